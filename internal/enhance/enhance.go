// Package enhance rewrites product descriptions with a text-generation model.
// Failures never escape: the caller always gets a usable description back.
package enhance

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const promptTemplate = `You are a professional e-commerce copywriter.
Optimize the following product description to be more engaging and professional.
Keep it concise but attractive for sales.

Product Title: %s
Current Description: %s

Return ONLY the optimized description text.`

// Prompt builds the copywriting request for one product.
func Prompt(title, description string) string {
	return fmt.Sprintf(promptTemplate, title, description)
}

type Enhancer struct {
	gen Generator
	log *zap.Logger
}

func New(gen Generator, logger *zap.Logger) *Enhancer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enhancer{gen: gen, log: logger.Named("enhance")}
}

// CanOptimize reports whether there is enough input to ask for a rewrite:
// a title or a description.
func CanOptimize(title, description string) bool {
	return strings.TrimSpace(title) != "" || strings.TrimSpace(description) != ""
}

// Optimize returns a rewritten description, or description itself when the
// generator fails or returns nothing.
func (e *Enhancer) Optimize(ctx context.Context, title, description string) string {
	if e == nil || e.gen == nil {
		return description
	}
	out, err := e.gen.Generate(ctx, Prompt(title, description))
	if err != nil {
		e.log.Warn("optimization failed, keeping original", zap.Error(err))
		return description
	}
	out = strings.TrimSpace(out)
	if out == "" {
		e.log.Warn("empty optimization result, keeping original")
		return description
	}
	e.log.Debug("optimized", zap.Int("from", len(description)), zap.Int("to", len(out)))
	return out
}
