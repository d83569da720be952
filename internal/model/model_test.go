package model

import "testing"

func TestRiskRankOrdering(t *testing.T) {
	if !(RiskHigh.Rank() > RiskMedium.Rank() && RiskMedium.Rank() > RiskLow.Rank()) {
		t.Error("risk ranks are not strictly ordered")
	}
	if RiskLevel("bogus").Rank() != 0 {
		t.Errorf("unknown risk rank = %d, want 0", RiskLevel("bogus").Rank())
	}
}

func TestMaxRisk(t *testing.T) {
	tests := []struct {
		a, b, want RiskLevel
	}{
		{RiskLow, RiskHigh, RiskHigh},
		{RiskHigh, RiskLow, RiskHigh},
		{RiskMedium, RiskMedium, RiskMedium},
		{RiskLow, RiskMedium, RiskMedium},
	}
	for _, tt := range tests {
		if got := MaxRisk(tt.a, tt.b); got != tt.want {
			t.Errorf("MaxRisk(%s, %s) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestParseRisk(t *testing.T) {
	if ParseRisk("high") != RiskHigh {
		t.Error("ParseRisk(high) != RiskHigh")
	}
	if ParseRisk("HIGH") != RiskLow {
		t.Error("ParseRisk is case sensitive by contract; unknown input should degrade to low")
	}
	if ParseRisk("") != RiskLow {
		t.Error("ParseRisk(empty) != RiskLow")
	}
}
