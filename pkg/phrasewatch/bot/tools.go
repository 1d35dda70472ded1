package bot

import (
	"encoding/json"
	"errors"
	"fmt"

	"phrasewatch/pkg/phrasewatch/assistant"
	"phrasewatch/pkg/phrasewatch/conversations"
	"phrasewatch/pkg/phrasewatch/phrases"
)

// Tool function names the assistant is allowed to call. Anything else is
// answered with a fixed "not supported" failure.
const (
	toolAddPhase    = "add_phase"
	toolRemovePhase = "remove_phase"
	toolListPhases  = "list_phases"
)

const notSupportedOutput = `{"success": false, "reason": "Not supported"}`

// toolArgs is the argument payload shared by add_phase and remove_phase. The
// assistant's tool schema spells the field "phase".
type toolArgs struct {
	Phase string `json:"phase"`
}

type toolResult struct {
	Success bool     `json:"success"`
	Reason  string   `json:"reason,omitempty"`
	Phases  []string `json:"phases,omitempty"`
}

func encodeResult(res toolResult) string {
	out, err := json.Marshal(res)
	if err != nil {
		return notSupportedOutput
	}
	return string(out)
}

// resolveToolCalls maps each pending invocation to a registry operation and
// encodes the outcome, echoing back every call's correlation id. Argument and
// semantic failures are reported in the output payload, never as errors.
func (h *ChatHandler) resolveToolCalls(sender conversations.User, calls []assistant.ToolCall) []assistant.ToolOutput {
	owner := phrases.Owner{ID: sender.ID, Name: sender.Name, Email: sender.Email}

	outputs := make([]assistant.ToolOutput, 0, len(calls))
	for _, call := range calls {
		if call.Type != "function" {
			continue
		}

		var output string
		switch call.Function.Name {
		case toolAddPhase:
			output = h.resolveAddPhase(call.Function.Arguments, owner)
		case toolRemovePhase:
			output = h.resolveRemovePhase(call.Function.Arguments, owner)
		case toolListPhases:
			output = encodeResult(toolResult{Success: true, Phases: h.registry.List()})
		default:
			output = notSupportedOutput
		}

		outputs = append(outputs, assistant.ToolOutput{ToolCallID: call.ID, Output: output})
	}
	return outputs
}

func (h *ChatHandler) resolveAddPhase(arguments string, owner phrases.Owner) string {
	var args toolArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil || args.Phase == "" {
		// No phrase in the payload: nothing to do, report success.
		return encodeResult(toolResult{Success: true})
	}

	if err := h.registry.Add(args.Phase, owner); err != nil {
		if errors.Is(err, phrases.ErrExists) {
			return encodeResult(toolResult{
				Success: false,
				Reason:  fmt.Sprintf("%q already exist.", args.Phase),
			})
		}
		return encodeResult(toolResult{Success: false, Reason: err.Error()})
	}
	return encodeResult(toolResult{
		Success: true,
		Reason:  fmt.Sprintf("%q added for alert.", args.Phase),
	})
}

func (h *ChatHandler) resolveRemovePhase(arguments string, owner phrases.Owner) string {
	var args toolArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil || args.Phase == "" {
		return encodeResult(toolResult{Success: true})
	}

	if err := h.registry.Remove(args.Phase, owner); err != nil {
		if errors.Is(err, phrases.ErrNotFound) {
			return encodeResult(toolResult{
				Success: false,
				Reason:  fmt.Sprintf("%q does not exist.", args.Phase),
			})
		}
		return encodeResult(toolResult{Success: false, Reason: err.Error()})
	}
	return encodeResult(toolResult{
		Success: true,
		Reason:  fmt.Sprintf("%q removed from alert system.", args.Phase),
	})
}
