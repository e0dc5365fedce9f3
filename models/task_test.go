package models

import "testing"

func TestBidCost(t *testing.T) {
	if got := BidCost(CategoryGenAI); got != 10 {
		t.Errorf("BidCost(genai) = %d, want 10", got)
	}
	if got := BidCost(CategoryCreAI); got != 5 {
		t.Errorf("BidCost(creai) = %d, want 5", got)
	}
	if got := BidCost("unknown"); got != 5 {
		t.Errorf("BidCost(unknown) = %d, want 5", got)
	}
}

func TestDefaultsForCategory(t *testing.T) {
	genai := DefaultsForCategory(CategoryGenAI)
	if genai.Payout != 500 || genai.TaskerPayout != 400 || genai.PlatformFee != 100 || genai.BidsNeeded != 10 {
		t.Errorf("genai defaults = %+v", genai)
	}
	creai := DefaultsForCategory(CategoryCreAI)
	if creai.Payout != 250 || creai.TaskerPayout != 200 || creai.PlatformFee != 50 || creai.BidsNeeded != 5 {
		t.Errorf("creai defaults = %+v", creai)
	}
}
