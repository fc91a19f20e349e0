// Package story groups a flat list of stories by author and orders the groups
// for the story bar: the viewer's own stories first, then authors with unseen
// stories, then everyone else, each by recency.
package story

import (
	"cmp"
	"slices"
	"time"
)

// Item is one story as returned by the backend.
type Item struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	Viewed    bool      `json:"isViewedByCurrentUser"`
}

// Group is every story by one author, newest first.
type Group struct {
	AuthorID            string    `json:"authorId"`
	Items               []Item    `json:"items"`
	HasUnviewed         bool      `json:"hasUnviewed"`
	MostRecentCreatedAt time.Time `json:"mostRecentCreatedAt"`
}

// Aggregate groups items by author and returns them in display order. The
// current user's group never counts as unviewed and is omitted when they have
// no stories. Ties are broken by ID so the result depends only on the input.
func Aggregate(items []Item, currentUserID string) []Group {
	byAuthor := make(map[string]*Group)
	for _, it := range items {
		g, ok := byAuthor[it.AuthorID]
		if !ok {
			g = &Group{AuthorID: it.AuthorID}
			byAuthor[it.AuthorID] = g
		}
		g.Items = append(g.Items, it)
		if it.CreatedAt.After(g.MostRecentCreatedAt) || len(g.Items) == 1 {
			g.MostRecentCreatedAt = it.CreatedAt
		}
		if !it.Viewed && it.AuthorID != currentUserID {
			g.HasUnviewed = true
		}
	}

	var mine *Group
	var unseen, seen []Group
	for _, g := range byAuthor {
		slices.SortStableFunc(g.Items, compareItems)
		switch {
		case g.AuthorID == currentUserID:
			mine = g
		case g.HasUnviewed:
			unseen = append(unseen, *g)
		default:
			seen = append(seen, *g)
		}
	}
	slices.SortFunc(unseen, compareGroups)
	slices.SortFunc(seen, compareGroups)

	out := make([]Group, 0, len(byAuthor))
	if mine != nil {
		out = append(out, *mine)
	}
	out = append(out, unseen...)
	return append(out, seen...)
}

// Flatten returns the items of groups in display order.
func Flatten(groups []Group) []Item {
	var items []Item
	for _, g := range groups {
		items = append(items, g.Items...)
	}
	return items
}

// compareItems orders newest first, then by ID.
func compareItems(a, b Item) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// compareGroups orders by most recent story first, then by author.
func compareGroups(a, b Group) int {
	if c := b.MostRecentCreatedAt.Compare(a.MostRecentCreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.AuthorID, b.AuthorID)
}
