package portal

import (
	"context"
	"net/http"

	"agent-portal/internal/core"
)

// DefaultPageLimit is the page size every list page asks for.
const DefaultPageLimit = 100

// ResidenceQuery filters the residence list.
type ResidenceQuery struct {
	Limit         int  `url:"limit,omitempty"`
	CompletedStep *int `url:"completedStep,omitempty"`
}

// ResidencePage is one page of the residence list.
type ResidencePage struct {
	Residences []core.Residence
	Pagination core.Pagination
}

// ListResidences returns the agent's residences.
func (c *Client) ListResidences(ctx context.Context, q ResidenceQuery) (*ResidencePage, error) {
	if q.Limit == 0 {
		q.Limit = DefaultPageLimit
	}
	env, err := c.call(ctx, epResidences, http.MethodGet, q, nil)
	if err != nil {
		return nil, err
	}
	residences, page, err := residencesPayload(env)
	if err != nil {
		return nil, err
	}
	return &ResidencePage{Residences: residences, Pagination: page}, nil
}

type residenceIDQuery struct {
	ID int `url:"id"`
}

// GetResidence returns one residence with its step dates.
func (c *Client) GetResidence(ctx context.Context, id int) (*core.ResidenceDetail, error) {
	env, err := c.call(ctx, epResidence, http.MethodGet, residenceIDQuery{ID: id}, nil)
	if err != nil {
		return nil, err
	}
	return residenceDetailPayload(env)
}
