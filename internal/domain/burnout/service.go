package burnout

import "context"

type BurnoutService interface {
	AnalyzeBurnout(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, error)
}
