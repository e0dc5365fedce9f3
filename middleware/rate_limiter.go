package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fruncoy/traiq-sub000/utils"
)

// In-memory rate limiting: per-IP fixed windows for public endpoints, per-user
// sliding windows with progressive penalties for authenticated traffic, and a
// whitelist-aware limiter for the payment webhook. State is process-local;
// login lockout prefers Redis when configured so it holds across instances.

type timestamps []int64 // unix nanos

func nowUnix() int64 { return time.Now().UnixNano() }

func getEnvInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return time.Duration(v) * time.Second
		}
	}
	return def
}

// pruneWindow drops timestamps older than cutoff.
func pruneWindow(arr timestamps, cutoff int64) timestamps {
	var kept timestamps
	for _, ts := range arr {
		if ts >= cutoff {
			kept = append(kept, ts)
		}
	}
	return kept
}

// retryAfterSeconds reports when the oldest request in the window expires.
func retryAfterSeconds(arr timestamps, now, windowNs int64) int {
	if len(arr) == 0 {
		return int(time.Duration(windowNs).Seconds())
	}
	oldest := arr[0]
	for _, ts := range arr {
		if ts < oldest {
			oldest = ts
		}
	}
	if left := oldest + windowNs - now; left > 0 {
		return int(left / 1e9)
	}
	return 1
}

func writeRateLimited(w http.ResponseWriter, message string, retryAfter int) {
	w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
		"data":    map[string]interface{}{"retry_after_seconds": retryAfter},
	})
}

// IPRateLimiter counts requests per client IP over a fixed window.
type IPRateLimiter struct {
	window      time.Duration
	maxReq      int
	mu          sync.Mutex
	state       map[string]timestamps
	cleanupTick time.Duration
	trustedCIDR []string
}

func NewIPRateLimiter(maxReq int, window time.Duration) *IPRateLimiter {
	l := &IPRateLimiter{
		window:      window,
		maxReq:      maxReq,
		state:       make(map[string]timestamps),
		cleanupTick: getEnvDuration("RATE_CLEANUP_SECONDS", 60*time.Second),
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		l.trustedCIDR = strings.Split(v, ",")
	}
	go l.cleanupLoop()
	return l
}

// clientIPGeneric returns the client IP. X-Forwarded-For / X-Real-IP are
// honored only when the remote address is inside one of the trusted CIDRs
// or IPs; otherwise the header is attacker-controlled and ignored.
func clientIPGeneric(r *http.Request, trustedCIDR []string) string {
	remoteHost, _, _ := net.SplitHostPort(r.RemoteAddr)
	remoteIP := net.ParseIP(remoteHost)
	trusted := false
	for _, cidr := range trustedCIDR {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if strings.Contains(cidr, "/") {
			if _, ipnet, err := net.ParseCIDR(cidr); err == nil {
				if remoteIP != nil && ipnet.Contains(remoteIP) {
					trusted = true
					break
				}
			}
			continue
		}
		if ip := net.ParseIP(cidr); ip != nil && remoteIP != nil && ip.Equal(remoteIP) {
			trusted = true
			break
		}
	}
	if trusted {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			if len(parts) > 0 {
				return strings.TrimSpace(parts[0])
			}
		}
		if xr := r.Header.Get("X-Real-IP"); xr != "" {
			return strings.TrimSpace(xr)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPGeneric(r, l.trustedCIDR)
		now := nowUnix()
		windowNs := int64(l.window)

		l.mu.Lock()
		filtered := pruneWindow(l.state[ip], now-windowNs)
		filtered = append(filtered, now)
		l.state[ip] = filtered
		count := len(filtered)
		l.mu.Unlock()

		limit := l.maxReq
		if limit <= 0 {
			limit = getEnvInt("RATE_IP_DEFAULT", 200)
		}

		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if count > limit {
			writeRateLimited(w, "Too many requests, please try again later", retryAfterSeconds(filtered, now, windowNs))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *IPRateLimiter) cleanupLoop() {
	tick := time.NewTicker(l.cleanupTick)
	defer tick.Stop()
	for range tick.C {
		l.mu.Lock()
		cutoff := nowUnix() - int64(l.window)
		for k, arr := range l.state {
			if kept := pruneWindow(arr, cutoff); len(kept) == 0 {
				delete(l.state, k)
			} else {
				l.state[k] = kept
			}
		}
		l.mu.Unlock()
	}
}

// UserRateLimiter applies per-user sliding windows keyed by route category,
// with escalating penalty windows for users that keep hammering a limit.
type UserRateLimiter struct {
	mu            sync.Mutex
	state         map[string]timestamps // key = u:<id>:<category>
	penalty       map[string]penaltyInfo
	windowDefault time.Duration
	cleanupTick   time.Duration
	maxRead       int
	maxWrite      int
}

type penaltyInfo struct {
	Level int
	Until int64 // unix nanos
}

func NewUserRateLimiter(maxReqRead, maxReqWrite int, windowSec int) *UserRateLimiter {
	l := &UserRateLimiter{
		state:         make(map[string]timestamps),
		penalty:       make(map[string]penaltyInfo),
		windowDefault: time.Duration(windowSec) * time.Second,
		cleanupTick:   getEnvDuration("RATE_CLEANUP_SECONDS", 60*time.Second),
		maxRead:       maxReqRead,
		maxWrite:      maxReqWrite,
	}
	go l.cleanupLoop()
	return l
}

func routeCategory(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/login"),
		strings.HasPrefix(path, "/v1/register"),
		strings.HasPrefix(path, "/v1/refresh"),
		strings.HasPrefix(path, "/v1/logout"):
		return "auth"
	case strings.HasPrefix(path, "/v1/admin"):
		return "admin"
	case strings.HasSuffix(path, "/submission"), strings.HasSuffix(path, "/upload"):
		return "upload"
	default:
		return "api"
	}
}

func (l *UserRateLimiter) limitForCategory(cat string) (int, time.Duration) {
	switch cat {
	case "auth":
		return getEnvInt("RATE_USER_AUTH", 50), time.Minute
	case "upload":
		return getEnvInt("RATE_USER_UPLOAD", l.maxWrite), l.windowDefault
	case "admin":
		return getEnvInt("RATE_USER_ADMIN", 500), time.Minute
	default:
		return getEnvInt("RATE_USER_API", l.maxRead), l.windowDefault
	}
}

// penaltyDuration escalates 1m, 5m, 15m, then 30m for repeat offenders.
func penaltyDuration(level int) time.Duration {
	switch level {
	case 1:
		return time.Minute
	case 2:
		return 5 * time.Minute
	case 3:
		return 15 * time.Minute
	default:
		return 30 * time.Minute
	}
}

func (l *UserRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := utils.GetUserID(r)
		if role, ok2 := r.Context().Value(utils.UserRoleKey).(string); ok2 && role == "admin" {
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			// unauthenticated requests are covered by the IP limiter
			next.ServeHTTP(w, r)
			return
		}
		cat := routeCategory(r.URL.Path)
		limit, window := l.limitForCategory(cat)

		key := fmt.Sprintf("u:%d:%s", uid, cat)
		now := nowUnix()

		l.mu.Lock()
		filtered := pruneWindow(l.state[key], now-int64(window))
		filtered = append(filtered, now)
		l.state[key] = filtered
		count := len(filtered)

		pi := l.penalty[key]
		if pi.Until > now {
			retry := int(time.Duration(pi.Until-now) / time.Second)
			l.mu.Unlock()
			writeRateLimited(w, "Too many requests, please try again later", retry)
			return
		}

		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if count > limit {
			newLevel := pi.Level + 1
			duration := penaltyDuration(newLevel)
			l.penalty[key] = penaltyInfo{Level: newLevel, Until: now + int64(duration)}
			l.mu.Unlock()
			writeRateLimited(w, "Too many requests, please try again later", int(duration.Seconds()))
			return
		}
		l.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (l *UserRateLimiter) cleanupLoop() {
	tick := time.NewTicker(l.cleanupTick)
	defer tick.Stop()
	for range tick.C {
		l.mu.Lock()
		now := nowUnix()
		cutoff := now - int64(l.windowDefault)
		for k, arr := range l.state {
			if kept := pruneWindow(arr, cutoff); len(kept) == 0 {
				delete(l.state, k)
			} else {
				l.state[k] = kept
			}
		}
		for k, p := range l.penalty {
			if p.Until < now {
				delete(l.penalty, k)
			}
		}
		l.mu.Unlock()
	}
}

// Login lockout. Redis-backed when configured so the lock holds across
// instances, in-memory otherwise.
var (
	loginMu   sync.Mutex
	failedMap = make(map[string]int)   // u:<id> -> failures
	lockMap   = make(map[string]int64) // u:<id> -> lock until, unix nanos
)

func IsAccountLocked(userID uint) (bool, time.Duration) {
	if utils.RedisClient != nil {
		ctx := context.Background()
		ttl, err := utils.RedisClient.TTL(ctx, fmt.Sprintf("login:lock:u:%d", userID)).Result()
		if err == nil && ttl > 0 {
			return true, ttl
		}
		return false, 0
	}
	loginMu.Lock()
	defer loginMu.Unlock()
	key := fmt.Sprintf("u:%d", userID)
	until := lockMap[key]
	if until == 0 {
		return false, 0
	}
	now := nowUnix()
	if until > now {
		return true, time.Duration(until - now)
	}
	delete(lockMap, key)
	failedMap[key] = 0
	return false, 0
}

func RecordFailedLogin(userID uint) {
	if utils.RedisClient != nil {
		ctx := context.Background()
		failKey := fmt.Sprintf("login:fail:u:%d", userID)
		failures, err := utils.RedisClient.Incr(ctx, failKey).Result()
		if err == nil {
			_, _ = utils.RedisClient.Expire(ctx, failKey, 30*time.Minute).Result()
			duration := penaltyDuration(int(failures))
			_ = utils.RedisClient.Set(ctx, fmt.Sprintf("login:lock:u:%d", userID), "1", duration).Err()
			return
		}
		// Redis unavailable, fall through to the in-memory tracker
	}

	loginMu.Lock()
	defer loginMu.Unlock()
	key := fmt.Sprintf("u:%d", userID)
	failedMap[key]++
	duration := penaltyDuration(failedMap[key])
	lockMap[key] = nowUnix() + int64(duration)
}

func ResetFailedLogin(userID uint) {
	if utils.RedisClient != nil {
		ctx := context.Background()
		_, _ = utils.RedisClient.Del(ctx,
			fmt.Sprintf("login:fail:u:%d", userID),
			fmt.Sprintf("login:lock:u:%d", userID),
		).Result()
		return
	}
	loginMu.Lock()
	defer loginMu.Unlock()
	key := fmt.Sprintf("u:%d", userID)
	delete(lockMap, key)
	failedMap[key] = 0
}

// WebhookLimiter rate-limits the payment callback endpoint per source IP,
// with a whitelist for the gateway's known addresses.
type WebhookLimiter struct {
	maxReq    int
	window    time.Duration
	whitelist map[string]bool
	mu        sync.Mutex
	state     map[string]timestamps
}

func NewWebhookLimiter(maxReq int, window time.Duration, whitelist []string) *WebhookLimiter {
	wl := make(map[string]bool)
	for _, ip := range whitelist {
		wl[ip] = true
	}
	return &WebhookLimiter{
		maxReq:    maxReq,
		window:    window,
		whitelist: wl,
		state:     make(map[string]timestamps),
	}
}

func (l *WebhookLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIPGeneric(r, nil)
		if l.whitelist[ip] {
			next.ServeHTTP(w, r)
			return
		}
		now := nowUnix()
		l.mu.Lock()
		filtered := pruneWindow(l.state[ip], now-int64(l.window))
		filtered = append(filtered, now)
		l.state[ip] = filtered
		count := len(filtered)
		l.mu.Unlock()
		if count > l.maxReq {
			writeRateLimited(w, "Too many webhook requests, please try again later", retryAfterSeconds(filtered, now, int64(l.window)))
			return
		}
		next.ServeHTTP(w, r)
	})
}
