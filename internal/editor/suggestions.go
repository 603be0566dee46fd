package editor

import (
	"context"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/backend"
)

// CardState is the lifecycle state of a suggestion card.
type CardState string

const (
	// CardProposed is the initial state: a suggestion exists but no
	// concrete content has been generated for it.
	CardProposed CardState = "proposed"
	// CardGenerating means a generation call is in flight.
	CardGenerating CardState = "generating"
	// CardReady means generated content is available for review.
	CardReady CardState = "ready"
	// CardAccepted and CardRejected are terminal.
	CardAccepted CardState = "accepted"
	CardRejected CardState = "rejected"
)

// Card is one suggestion the user can generate content for and then accept
// or reject. Applying is a transient busy flag, not a lifecycle state: it
// marks a ready card whose accept call is in flight so a second accept or a
// reject is refused until the call resolves.
type Card struct {
	ID         string                     `json:"id"`
	Section    string                     `json:"section"`
	Suggestion string                     `json:"suggestion"`
	Reasoning  string                     `json:"reasoning,omitempty"`
	State      CardState                  `json:"state"`
	Applying   bool                       `json:"applying"`
	Content    *backend.SuggestionContent `json:"content,omitempty"`
	Error      string                     `json:"error,omitempty"`
}

// AddCard creates a proposed card from an analysis suggestion and returns a
// snapshot of it.
func (s *Session) AddCard(section, suggestion, reasoning string) Card {
	card := &Card{
		ID:         uuid.NewString(),
		Section:    section,
		Suggestion: suggestion,
		Reasoning:  reasoning,
		State:      CardProposed,
	}
	s.mu.Lock()
	s.cards[card.ID] = card
	s.cardOrder = append(s.cardOrder, card.ID)
	s.mu.Unlock()
	return *card
}

// CardsFromAnalysis seeds one proposed card per suggested improvement.
func (s *Session) CardsFromAnalysis(analysis *backend.Analysis) []Card {
	out := make([]Card, 0, len(analysis.SuggestedImprovements))
	for _, imp := range analysis.SuggestedImprovements {
		out = append(out, s.AddCard(imp.Section, imp.Suggestion, imp.Reasoning))
	}
	return out
}

// Cards returns snapshots of the pending cards in creation order. Accepted
// and rejected cards are excluded: they leave the pending list.
func (s *Session) Cards() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Card, 0, len(s.cardOrder))
	for _, id := range s.cardOrder {
		card := s.cards[id]
		if card.State == CardAccepted || card.State == CardRejected {
			continue
		}
		out = append(out, *card)
	}
	return out
}

// Card returns a snapshot of one card.
func (s *Session) Card(cardID string) (Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[cardID]
	if !ok {
		return Card{}, ErrCardNotFound
	}
	return *card, nil
}

// GenerateCard produces concrete content for a proposed card. The card sits
// in the generating state while the call is in flight; on failure it
// returns to proposed with the error attached so the user can retry.
func (s *Session) GenerateCard(ctx context.Context, cardID string) (Card, error) {
	s.mu.Lock()
	card, ok := s.cards[cardID]
	if !ok {
		s.mu.Unlock()
		return Card{}, ErrCardNotFound
	}
	if card.State != CardProposed {
		state := card.State
		s.mu.Unlock()
		return Card{}, &CardStateError{CardID: cardID, State: state, Op: "generate"}
	}
	card.State = CardGenerating
	card.Error = ""
	versionID := s.activeVersionID
	section := card.Section
	suggestion := card.Suggestion
	s.mu.Unlock()

	content, err := s.backend.GenerateSuggestion(ctx, versionID, section, "", suggestion)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		card.State = CardProposed
		card.Error = err.Error()
		return *card, nil
	}
	card.State = CardReady
	card.Content = content
	return *card, nil
}

// AcceptCard applies a ready card's content to the active resume version.
// The backend creates a new version; on success the session adopts the new
// version id and drops its cached analysis so the next read recomputes.
// Accepts on different cards may run concurrently; each completion installs
// its own result, so the last to complete determines the active version.
func (s *Session) AcceptCard(ctx context.Context, cardID string) (int64, error) {
	s.mu.Lock()
	card, ok := s.cards[cardID]
	if !ok {
		s.mu.Unlock()
		return 0, ErrCardNotFound
	}
	if card.Applying {
		s.mu.Unlock()
		return 0, ErrCardBusy
	}
	if card.State != CardReady {
		state := card.State
		s.mu.Unlock()
		return 0, &CardStateError{CardID: cardID, State: state, Op: "accept"}
	}
	card.Applying = true
	card.Error = ""
	versionID := s.activeVersionID
	approved := []backend.ApprovedSuggestion{{
		Section:         card.Section,
		SectionID:       card.Content.SectionID,
		Suggestion:      card.Suggestion,
		OriginalContent: card.Content.OriginalContent,
		ImprovedContent: card.Content.ImprovedContent,
		Explanation:     card.Content.Explanation,
	}}
	s.mu.Unlock()

	result, err := s.backend.ApplySuggestions(ctx, versionID, approved)

	s.mu.Lock()
	defer s.mu.Unlock()
	card.Applying = false
	if err != nil {
		card.Error = err.Error()
		return 0, &SaveError{Message: "apply suggestion", Cause: err}
	}
	card.State = CardAccepted
	s.activeVersionID = result.NewResumeVersionID
	s.analysis = nil
	s.analysisVersion = 0
	return result.NewResumeVersionID, nil
}

// RejectCard discards a card locally. A card mid-apply cannot be rejected
// until the in-flight call resolves.
func (s *Session) RejectCard(cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[cardID]
	if !ok {
		return ErrCardNotFound
	}
	if card.Applying {
		return ErrCardBusy
	}
	if card.State == CardAccepted || card.State == CardRejected {
		return &CardStateError{CardID: cardID, State: card.State, Op: "reject"}
	}
	card.State = CardRejected
	return nil
}
