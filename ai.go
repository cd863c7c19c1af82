package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
)

// aiConfig is the ai: block of config.yaml.
type aiConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

const aiBatchSize = 50

type aiTxn struct {
	Seq         int      `json:"seq"`
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Amount      string   `json:"amount"`
	Hints       []string `json:"hints,omitempty"`
}

type aiRequest struct {
	Accounts     []string `json:"accounts"`
	Transactions []aiTxn  `json:"transactions"`
}

type aiDecision struct {
	Seq      int      `json:"seq"`
	Accounts []string `json:"accounts"`
}

type aiResponse struct {
	Decisions []aiDecision `json:"decisions"`
}

func buildAIPrompt(req aiRequest) string {
	data, _ := json.MarshalIndent(req, "", "  ")
	return `You are helping categorize personal bank transactions into a fixed
chart of accounts. For every transaction below, suggest up to 3 account
labels taken VERBATIM from the "accounts" list, best first. Negative amounts
are outflows (expenses or transfers out), positive amounts are inflows.
"hints" are ranked guesses from a local classifier; override them freely.

Reply with JSON only, shaped as:
{"decisions": [{"seq": <seq of the input transaction>, "accounts": ["...", "..."]}]}
Return exactly one decision per input transaction.

` + string(data)
}

// reviewWithAI sends escalated transactions to the Anthropic API in batches
// and returns suggested account labels per sequence number. Suggestions are
// advisory: they only reorder the interactive picker, the human still
// resolves every escalated transaction.
func reviewWithAI(ctx context.Context, cfg aiConfig, txns []Txn, hints map[int][]string) (map[int][]string, error) {
	if len(cfg.APIKey) == 0 {
		return nil, errors.New("ai review enabled but no api_key in config.yaml or ANTHROPIC_API_KEY")
	}
	model := cfg.Model
	if len(model) == 0 {
		model = "claude-sonnet-4-5"
	}
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	labels := AccountLabels()

	out := make(map[int][]string, len(txns))
	for start := 0; start < len(txns); start += aiBatchSize {
		end := min(start+aiBatchSize, len(txns))
		req := aiRequest{Accounts: labels}
		for _, t := range txns[start:end] {
			req.Transactions = append(req.Transactions, aiTxn{
				Seq:         t.Seq,
				Date:        t.Date.Format("2006-01-02"),
				Description: t.Description(),
				Amount:      t.Amount.StringFixed(2),
				Hints:       hints[t.Seq],
			})
		}

		message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(model),
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(buildAIPrompt(req))),
			},
		})
		if err != nil {
			return nil, errors.Wrapf(err, "claude API call failed for batch at %d", start)
		}

		var text string
		for _, block := range message.Content {
			if block.Type == "text" {
				text += block.Text
			}
		}
		// The model may wrap the JSON in a code fence.
		jsonStart := strings.Index(text, "{")
		jsonEnd := strings.LastIndex(text, "}")
		if jsonStart < 0 || jsonEnd < 0 {
			return nil, errors.Errorf("no JSON in AI response: %s", text)
		}
		var resp aiResponse
		if err := json.Unmarshal([]byte(text[jsonStart:jsonEnd+1]), &resp); err != nil {
			return nil, errors.Wrap(err, "unable to parse AI response")
		}

		for _, d := range resp.Decisions {
			var valid []string
			for _, label := range d.Accounts {
				if _, err := LookupAccount(label); err == nil {
					valid = append(valid, label)
				}
			}
			if len(valid) > 0 {
				out[d.Seq] = valid
			}
		}
		fmt.Printf("AI reviewed %d of %d escalated transactions\n", end, len(txns))
	}
	return out, nil
}
