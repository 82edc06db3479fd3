// Package subscription exposes subscription fetch contracts (SPEC_FULL §3)
// and their items as a read-only HTTP introspection surface.
package subscription

import "feedcore/internal/domain/entity"

// DTO is the wire representation of a Subscription.
type DTO struct {
	ID                    string `json:"id"`
	Source                string `json:"source"`
	UpdateIntervalMinutes int    `json:"update_interval_minutes"`
	LastError             int    `json:"last_error"`
	LastErrorText         string `json:"last_error_text,omitempty"`
	Discontinued          bool   `json:"discontinued"`
}

func fromEntity(s *entity.Subscription) DTO {
	return DTO{
		ID:                    string(s.ID),
		Source:                s.Source,
		UpdateIntervalMinutes: s.UpdateIntervalMinutes,
		LastError:             int(s.LastError),
		LastErrorText:         s.LastErrorText,
		Discontinued:          s.Discontinued,
	}
}

// ItemDTO is the wire representation of an Item, scoped to the fields a
// control surface's item list needs.
type ItemDTO struct {
	ID        int64  `json:"id"`
	SourceURL string `json:"source_url"`
	Title     string `json:"title"`
	Read      bool   `json:"read"`
	Flagged   bool   `json:"flagged"`
	New       bool   `json:"new"`
}

func itemFromEntity(it *entity.Item) ItemDTO {
	return ItemDTO{
		ID:        int64(it.ID),
		SourceURL: it.SourceURL,
		Title:     it.Title,
		Read:      it.Read,
		Flagged:   it.Flagged,
		New:       it.New,
	}
}

// StatsDTO reports a subscription's item/unread counts.
type StatsDTO struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}
