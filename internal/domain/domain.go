package domain

// Role 专家角色
type Role string

const (
	RoleFinancial Role = "financial"
	RoleMarket    Role = "market"
	RoleValuation Role = "valuation"
)

// AllRoles 返回全部专家角色（固定顺序）
func AllRoles() []Role {
	return []Role{RoleFinancial, RoleMarket, RoleValuation}
}

// AnalysisRequest 一次投资分析请求
type AnalysisRequest struct {
	Ticker   string
	Question string
	Include  []Role // 为空表示全部角色
}

// EffectiveRoles 解析本次请求实际需要调用的角色集合
func (r AnalysisRequest) EffectiveRoles() []Role {
	if len(r.Include) == 0 {
		return AllRoles()
	}
	seen := make(map[Role]bool, len(r.Include))
	var roles []Role
	for _, role := range AllRoles() {
		for _, inc := range r.Include {
			if inc == role && !seen[role] {
				seen[role] = true
				roles = append(roles, role)
			}
		}
	}
	return roles
}

// SpecialistResult 单个专家的分析结果
// Succeeded 为 false 时 Text 为人类可读的错误描述，综合评分不得引用其内容
type SpecialistResult struct {
	Role      Role
	Text      string
	Succeeded bool
	Err       string
}

// Rating 五档综合建议
type Rating string

const (
	RatingStrongBuy  Rating = "strong_buy"
	RatingBuy        Rating = "buy"
	RatingHold       Rating = "hold"
	RatingSell       Rating = "sell"
	RatingStrongSell Rating = "strong_sell"
	RatingUnknown    Rating = "unknown"
)

// ParseRating 解析模型输出的建议档位，无法识别时返回 unknown
func ParseRating(s string) Rating {
	switch Rating(s) {
	case RatingStrongBuy, RatingBuy, RatingHold, RatingSell, RatingStrongSell:
		return Rating(s)
	default:
		return RatingUnknown
	}
}

// SynthesisReport 综合分析的结构化输出
type SynthesisReport struct {
	FinancialScore   int      `json:"financial_score"`
	MarketScore      int      `json:"market_score"`
	ValuationScore   int      `json:"valuation_score"`
	Recommendation   string   `json:"recommendation"`
	TargetPriceRange string   `json:"target_price_range"`
	KeyRisks         []string `json:"key_risks"`
	HoldingHorizon   string   `json:"holding_horizon"`
	Summary          string   `json:"summary"`
}

// Recommendation 综合投资建议，按请求生成，不做持久化
type Recommendation struct {
	Ticker   string
	Question string
	Results  []SpecialistResult
	Report   SynthesisReport
	Rating   Rating
}

// DocumentChunk 财报文本块，构建索引时一次生成，之后不可变
type DocumentChunk struct {
	Ordinal   int
	Company   string
	Text      string
	Embedding []float64
}
