package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/rpggio/estimator/internal/backend"
	"github.com/rpggio/estimator/internal/domain/activity"
	"github.com/rpggio/estimator/internal/domain/chat"
	"github.com/rpggio/estimator/internal/domain/project"
)

// ChatResult is the outcome of one chat turn.
type ChatResult struct {
	Reply   chat.Message    `json:"reply"`
	Outcome chat.Outcome    `json:"outcome"`
	Project project.Project `json:"project"`
}

// SendChat posts a user message with the project context and applies the
// takeoff actions in the reply.
func (s *Service) SendChat(ctx context.Context, projectID, text string) (ChatResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatResult{}, ErrEmptyMessage
	}
	if err := s.acquire(projectID, KindChat); err != nil {
		return ChatResult{}, err
	}
	defer s.release(projectID, KindChat)

	userMsg := chat.NewMessage(chat.SenderUser, text, s.now())
	proj, err := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		p.Discussion = append(p.Discussion, userMsg)
		return p
	})
	if err != nil {
		return ChatResult{}, err
	}

	reply, err := s.backend.Chat(ctx, backend.ChatRequest{
		Discussion: proj.Discussion,
		ProjectData: backend.ChatProjectData{
			Summary:              proj.Summary,
			Notes:                proj.Notes,
			DivisionDescriptions: proj.DivisionDescriptions,
			Takeoff:              proj.Takeoff,
			Preferences:          proj.Preferences,
			SpecIndex:            proj.SpecIndex,
		},
	})
	if err != nil {
		apology := chat.NewMessage(chat.SenderGPT, fmt.Sprintf(
			"Sorry, I encountered an error: %s. Please try rephrasing your question.", errorText(err)), s.now())
		updated, uerr := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
			p.Discussion = append(p.Discussion, apology)
			return p
		})
		if uerr != nil {
			s.logger.Warn("failed to record chat failure", "project_id", projectID, "error", uerr)
		}
		s.record(ctx, projectID, activity.TypeChat, apology.Text, true)
		return ChatResult{Reply: apology, Project: updated}, fmt.Errorf("chat: %w", err)
	}

	actions := chat.DecodeActions(reply.Actions)
	gptMsg := chat.NewMessage(chat.SenderGPT, reply.Reply, s.now())
	var outcome chat.Outcome
	updated, err := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		p.Discussion = append(p.Discussion, gptMsg)
		if len(actions) > 0 {
			p.Takeoff, outcome = chat.Apply(p.Takeoff, actions, chat.ApplyOptions{IDs: s.store.IDs(), Now: s.now()})
			if outcome.Applied > 0 {
				p.Message = fmt.Sprintf("Applied %d GPT action(s) to takeoff.", outcome.Applied)
			}
		}
		return p
	})
	if err != nil {
		return ChatResult{}, err
	}

	for _, skipped := range outcome.Skipped {
		s.logger.Info("chat action skipped", "project_id", projectID, "reason", skipped)
	}
	summary := fmt.Sprintf("Chat reply with %d action(s), %d applied.", outcome.Total(), outcome.Applied)
	s.record(ctx, projectID, activity.TypeChat, summary, false)
	return ChatResult{Reply: gptMsg, Outcome: outcome, Project: updated}, nil
}
