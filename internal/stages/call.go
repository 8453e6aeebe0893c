package stages

import (
	"context"
	"encoding/json"
	"fmt"

	"designflow/internal/llm"
)

// payload is anything a stage decodes a model response into.
type payload interface {
	Validate() error
}

// callJSON asks the model for JSON and decodes it into out. A response that
// fails to parse or validate is retried once with the same prompt; a second
// failure fails the stage.
func callJSON(ctx context.Context, client llm.Client, system, user string, out payload) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		response, err := client.CompleteWithSystem(ctx, system, user)
		if err != nil {
			return err
		}

		raw := llm.ExtractJSON(response)
		if raw == "" {
			lastErr = fmt.Errorf("no JSON found in model response")
			continue
		}
		if err := json.Unmarshal([]byte(raw), out); err != nil {
			lastErr = fmt.Errorf("decode model response: %w", err)
			continue
		}
		if err := out.Validate(); err != nil {
			lastErr = fmt.Errorf("invalid model response: %w", err)
			continue
		}
		return nil
	}
	return lastErr
}
