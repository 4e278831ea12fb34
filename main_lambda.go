//go:build lambda

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

// Function URL entrypoint. The request body carries the same four documents
// the CLI reads from files, inline.

type lambdaRequest struct {
	Product           json.RawMessage `json:"product"`
	Additives         json.RawMessage `json:"additives"`
	EffectMultipliers json.RawMessage `json:"effectMultipliers"`
	SubstanceRules    json.RawMessage `json:"substanceRules"`
	MaxDepth          int             `json:"maxDepth"`
	Strategy          string          `json:"strategy"`
	EffectCapacity    int             `json:"effectCapacity"`
	NodeBudget        int64           `json:"nodeBudget"`
}

func handler(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	if req.RequestContext.HTTP.Method != "POST" {
		return errResp(404, "POST only"), nil
	}

	var in lambdaRequest
	if err := json.Unmarshal([]byte(req.Body), &in); err != nil {
		return errResp(400, fmt.Sprintf("bad request body: %v", err)), nil
	}
	if in.Strategy == "" {
		in.Strategy = StrategyBFSParallel
	}

	cfg := DefaultConfig()
	if in.EffectCapacity > 0 {
		cfg.EffectCapacity = in.EffectCapacity
	}
	cfg.NodeBudget = in.NodeBudget
	if deadline, ok := ctx.Deadline(); ok {
		// Leave headroom to serialize the response before the runtime kills us.
		if budget := time.Until(deadline) - 2*time.Second; budget > 0 {
			cfg.TimeBudget = budget
		} else {
			cfg.NodeBudget = 1
		}
	}

	cat, err := ParseCatalog(string(in.Product), string(in.Additives),
		string(in.EffectMultipliers), string(in.SubstanceRules), cfg.capacity())
	if err != nil {
		return errResp(400, err.Error()), nil
	}

	res, err := FindBestMix(cat, in.MaxDepth, in.Strategy, cfg)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return errResp(400, err.Error()), nil
		}
		return errResp(500, err.Error()), nil
	}
	out, err := Report(cat, res)
	if err != nil {
		return errResp(500, err.Error()), nil
	}

	body, err := json.Marshal(out)
	if err != nil {
		return errResp(500, err.Error()), nil
	}
	return events.LambdaFunctionURLResponse{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}, nil
}

func errResp(code int, msg string) events.LambdaFunctionURLResponse {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{
		StatusCode: code,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func main() {
	lambda.Start(handler)
}
