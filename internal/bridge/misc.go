package bridge

import "context"

const helpMessage = `Here's what you can ask me:
• "remind me to submit essay tomorrow" — add a task
• "show my tasks" / "mark essay as done"
• "start a study session for calculus for 45 minutes"
• "create a study plan for exam biology in 5 days"
• "start focus mode"
• "i did meditation" / "show my habits"
• "search my notes for mitochondria"
• "schedule a meeting study group tomorrow"
• "how am i doing today?"`

// RegisterHelp adds the generic-fallback handler.
func RegisterHelp(r *Registry) {
	r.Register("assistant.help", func(ctx context.Context, params Params, cctx *CommandContext) (*Result, error) {
		return &Result{Success: true, Message: helpMessage}, nil
	})
}
