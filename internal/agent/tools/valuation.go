package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
)

// PEResult 市盈率计算结果，Undefined 表示输入在数学上无意义
type PEResult struct {
	Undefined bool
	Value     float64
}

// PERatio 计算市盈率，每股收益为零或为负时无法得到有意义的比率
func PERatio(price, eps float64) PEResult {
	if eps <= 0 {
		return PEResult{Undefined: true}
	}
	return PEResult{Value: price / eps}
}

// DCFResult 内在价值计算结果，Invalid 表示模型在给定输入下发散
type DCFResult struct {
	Invalid bool
	Value   float64
}

// IntrinsicValue 永续增长 DCF：fcf * (1+g) / (r-g)，要求折现率大于增长率
func IntrinsicValue(fcf, growthRate, discountRate float64) DCFResult {
	if discountRate <= growthRate {
		return DCFResult{Invalid: true}
	}
	return DCFResult{Value: fcf * (1 + growthRate) / (discountRate - growthRate)}
}

type peArgs struct {
	Ticker string  `json:"ticker" jsonschema:"description=股票代码"`
	Price  float64 `json:"price" jsonschema:"description=当前股价"`
	EPS    float64 `json:"eps" jsonschema:"description=每股收益"`
}

type dcfArgs struct {
	FCF          float64 `json:"fcf" jsonschema:"description=自由现金流"`
	GrowthRate   float64 `json:"growth_rate" jsonschema:"description=永续增长率，小数形式如 0.03"`
	DiscountRate float64 `json:"discount_rate" jsonschema:"description=折现率，小数形式如 0.10"`
}

// NewValuationTools 估值专家的固定工具集
func NewValuationTools() ([]tool.BaseTool, error) {
	peTool, err := utils.InferTool("calculate_pe_ratio", "计算市盈率（P/E）",
		func(ctx context.Context, in *peArgs) (string, error) {
			res := PERatio(in.Price, in.EPS)
			if res.Undefined {
				return "无法计算：每股收益为零或为负，市盈率无意义", nil
			}
			return fmt.Sprintf("%s PE比率: %.2f", in.Ticker, res.Value), nil
		})
	if err != nil {
		return nil, err
	}

	dcfTool, err := utils.InferTool("calculate_intrinsic_value", "计算内在价值（永续增长 DCF）",
		func(ctx context.Context, in *dcfArgs) (string, error) {
			res := IntrinsicValue(in.FCF, in.GrowthRate, in.DiscountRate)
			if res.Invalid {
				return "输入无效：折现率必须大于增长率", nil
			}
			return fmt.Sprintf("内在价值: $%.2f", res.Value), nil
		})
	if err != nil {
		return nil, err
	}

	return []tool.BaseTool{peTool, dcfTool}, nil
}
