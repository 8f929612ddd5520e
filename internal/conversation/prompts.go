package conversation

import (
	"fmt"
	"strings"

	"github.com/realtyflow/leadqual/internal/intent"
	"github.com/realtyflow/leadqual/internal/qualification"
)

const baseSystemPrompt = `You are a friendly real-estate assistant chatting with a prospective buyer or seller on behalf of a brokerage.
Keep replies short and conversational, two to three sentences at most.
Never invent listings, prices, or availability. If you do not know something, say so and offer to connect the prospect with an agent.
Ask at most one question per reply.`

// Canned replies for turns that never reach a model, or where every model
// tier failed.
const (
	openingGreeting = "Hi! I'm the assistant for this brokerage. Are you looking to buy, sell, or just exploring the market?"

	apologyReply = "Sorry, I'm having trouble responding right now. Please try again in a moment, or ask to speak with one of our agents."

	handoffAcknowledgement = "Of course. I'm connecting you with one of our agents now; they'll pick up this conversation shortly."
)

// slotQuestionHints steer the reply model toward the next open qualification
// dimension without scripting the exact wording.
var slotQuestionHints = map[qualification.Slot]string{
	qualification.SlotBudget:    "Ask what price range or budget they have in mind.",
	qualification.SlotAuthority: "Ask whether they are deciding on their own or together with someone else.",
	qualification.SlotNeed:      "Ask what they are looking for: a home to live in, an investment, or something else.",
	qualification.SlotTimeline:  "Ask how soon they are hoping to buy or sell.",
}

// replySystem assembles the system prompt stack for the reply call.
func replySystem(category intent.Category, memory *qualification.Memory) []string {
	system := []string{baseSystemPrompt}

	switch category {
	case intent.CategoryGreeting:
		system = append(system, "The prospect just greeted you. Greet them back warmly and ask how you can help with their real-estate plans.")
	case intent.CategoryEstimation:
		system = append(system, "The prospect wants a price estimate for a property. Explain that a specialist prepares estimates, ask for the property address if you do not have it, and let them know an agent will follow up with the numbers.")
	case intent.CategoryKnowledge:
		system = append(system, "The prospect asked a factual question about the market, the process, or the brokerage. Answer plainly if you can; otherwise say an agent can provide details.")
	case intent.CategoryBANT:
		system = append(system, "The prospect is sharing details about their plans. Acknowledge what they just told you before anything else.")
	}

	if memory != nil {
		if ctx := memoryPromptContext(memory); ctx != "" {
			system = append(system, ctx)
		}
		if memory.QualificationComplete() {
			system = append(system, "All qualification details are captured. Do not ask about budget, decision making, needs, or timing again. Offer to have an agent follow up and ask for their name and phone or email if you do not have both.")
		} else if hint, ok := slotQuestionHints[memory.NextSlot]; ok {
			system = append(system, "Then continue the conversation naturally. "+hint)
		}
	}
	return system
}

// memoryPromptContext summarizes what is already captured so the model never
// re-asks an answered question.
func memoryPromptContext(m *qualification.Memory) string {
	var known []string
	if m.Budget != nil {
		known = append(known, fmt.Sprintf("budget around $%d", *m.Budget))
	}
	if m.Authority != nil {
		known = append(known, "decision making: "+*m.Authority)
	}
	if m.Need != nil {
		known = append(known, "looking for: "+*m.Need)
	}
	if m.Timeline != nil {
		known = append(known, "timeline: "+*m.Timeline)
	}
	if m.Contact.Name != "" {
		known = append(known, "name: "+m.Contact.Name)
	}
	if len(known) == 0 {
		return ""
	}
	return "Already known about this prospect: " + strings.Join(known, "; ") + ". Do not ask for any of these again."
}
