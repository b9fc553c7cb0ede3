package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nickhellmer/vibedrop/internal/domain"
	apperrors "github.com/nickhellmer/vibedrop/internal/errors"
)

// Join codes avoid ambiguous characters (0/O, 1/I/L).
const joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
const joinCodeLength = 6

// sound circle creation retries on the (rare) join code collision
const joinCodeAttempts = 3

// CreateCircle creates a sound circle with the caller as owner. The drop rule
// must resolve to a valid window before anyone can submit, but creation only
// checks structural validity so owners can fix a rule after the fact.
func (s *Service) CreateCircle(ctx context.Context, creatorID uuid.UUID, name string, rule domain.DropRule) (*domain.SoundCircle, error) {
	if err := validateRule(name, rule); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		code, err := generateJoinCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate join code: %w", err)
		}

		circle, err := s.circles.Create(ctx, name, code, creatorID, rule)
		if errors.Is(err, domain.ErrJoinCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return circle, nil
	}
	return nil, fmt.Errorf("failed to find a free join code after %d attempts", joinCodeAttempts)
}

// JoinCircle adds the user to the circle behind a join code.
func (s *Service) JoinCircle(ctx context.Context, userID uuid.UUID, joinCode string) (*domain.SoundCircle, error) {
	joinCode = strings.ToUpper(strings.TrimSpace(joinCode))
	if joinCode == "" {
		return nil, apperrors.ValidationError("join code is required")
	}

	circle, err := s.circles.GetByJoinCode(ctx, joinCode)
	if err != nil {
		return nil, err
	}

	if err := s.circles.AddMember(ctx, circle.ID, userID, false); err != nil {
		return nil, err
	}
	return circle, nil
}

// CircleForUser returns the circle the user belongs to.
func (s *Service) CircleForUser(ctx context.Context, userID uuid.UUID) (*domain.SoundCircle, error) {
	return s.circles.GetForUser(ctx, userID)
}

// UpdateCircleRule changes a circle's name and recurrence rule. Only the
// creator may edit. Past submissions keep their classification; the new rule
// applies from the next resolver call.
func (s *Service) UpdateCircleRule(ctx context.Context, circleID, userID uuid.UUID, name string, rule domain.DropRule) error {
	if err := validateRule(name, rule); err != nil {
		return err
	}

	circle, err := s.circles.GetByID(ctx, circleID)
	if err != nil {
		return err
	}
	if circle.CreatorID != userID {
		return apperrors.ValidationError("only the circle creator can edit the drop schedule").
			WithField("circle_id", circleID.String())
	}

	return s.circles.UpdateRule(ctx, circleID, name, rule)
}

func validateRule(name string, rule domain.DropRule) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.ValidationError("circle name is required")
	}

	switch rule.Frequency {
	case domain.FrequencyDaily, domain.FrequencyWeekly:
	case domain.FrequencyBiweekly:
		if rule.AnchorDay2 == nil {
			return apperrors.ValidationError("biweekly circles need a second anchor day")
		}
		if *rule.AnchorDay2 == rule.AnchorDay1 {
			return apperrors.ValidationError("biweekly anchor days must differ")
		}
	default:
		return apperrors.ValidationError("drop frequency must be daily, weekly, or biweekly").
			WithField("frequency", string(rule.Frequency))
	}

	if rule.DropTime.IsZero() {
		return apperrors.ValidationError("drop time is required")
	}
	return nil
}

func generateJoinCode() (string, error) {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := make([]byte, joinCodeLength)
	for i, b := range buf {
		code[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(code), nil
}
