package domain

import (
	"reflect"
	"testing"
)

func TestEffectiveRoles(t *testing.T) {
	// 空集合表示全部角色
	req := AnalysisRequest{Ticker: "AAPL", Question: "q"}
	if got := req.EffectiveRoles(); !reflect.DeepEqual(got, AllRoles()) {
		t.Errorf("EffectiveRoles(空) = %v", got)
	}

	// 去重且保持固定角色顺序
	req.Include = []Role{RoleValuation, RoleFinancial, RoleFinancial}
	want := []Role{RoleFinancial, RoleValuation}
	if got := req.EffectiveRoles(); !reflect.DeepEqual(got, want) {
		t.Errorf("EffectiveRoles() = %v, want %v", got, want)
	}
}

func TestParseRating(t *testing.T) {
	cases := map[string]Rating{
		"strong_buy":  RatingStrongBuy,
		"hold":        RatingHold,
		"strong_sell": RatingStrongSell,
		"买入":          RatingUnknown,
		"":            RatingUnknown,
	}
	for in, want := range cases {
		if got := ParseRating(in); got != want {
			t.Errorf("ParseRating(%q) = %q, want %q", in, got, want)
		}
	}
}
