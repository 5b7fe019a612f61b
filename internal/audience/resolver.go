// Package audience decides which subscribers a campaign may reach.
package audience

import (
	"context"

	"github.com/apexmark/campaign-console/internal/model"
)

// GroupMemberLister is the slice of the subscriber repository the resolver
// needs: current members of one group.
type GroupMemberLister interface {
	ListByGroup(ctx context.Context, groupID string) ([]model.Subscriber, error)
}

type Resolver struct {
	Subscribers GroupMemberLister
}

func NewResolver(subscribers GroupMemberLister) *Resolver {
	return &Resolver{Subscribers: subscribers}
}

// Resolve returns the subscribers in groupID that are eligible for the given
// channel. Membership is read at call time, so the audience reflects group
// state at dispatch, not at campaign creation. An empty result is not an
// error here; the state machine converts empty to a failure.
func (r *Resolver) Resolve(ctx context.Context, groupID string, channel model.Channel) ([]model.Subscriber, error) {
	members, err := r.Subscribers.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	eligible := make([]model.Subscriber, 0, len(members))
	for _, s := range members {
		if Eligible(s, channel) {
			eligible = append(eligible, s)
		}
	}
	return eligible, nil
}

// Eligible reports whether a subscriber may receive the given channel:
// ACTIVE status always, plus opt-in and a phone number for WhatsApp.
func Eligible(s model.Subscriber, channel model.Channel) bool {
	if s.Status != model.SubscriberActive {
		return false
	}
	switch channel {
	case model.ChannelEmail:
		return s.Email != ""
	case model.ChannelWhatsApp:
		return s.WhatsAppOptIn && s.Phone != ""
	}
	return false
}
