package fitnessapi

import (
	"context"

	"github.com/dom/fitgate/internal/domain"
)

type profileCompletion struct {
	ProfileExists   bool `json:"profile_exists"`
	ProfileComplete bool `json:"profile_complete"`
}

// ProfileStatus asks whether userID has a fitness profile and whether all of
// its sections are filled in. Results are never cached.
func (c *Client) ProfileStatus(ctx context.Context, userID domain.UserID) (domain.ProfileStatus, error) {
	resp, err := c.Get(ctx, "check_profile_completion/"+userID.String(), nil)
	if err != nil {
		return domain.ProfileStatus{}, err
	}

	var pc profileCompletion
	if err := decode(resp, "check_profile_completion", &pc); err != nil {
		return domain.ProfileStatus{}, err
	}

	return domain.ProfileStatus{
		Created:   pc.ProfileExists,
		Completed: pc.ProfileExists && pc.ProfileComplete,
	}, nil
}
