package planningcenter

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
)

const peoplePath = "/people/v2/people?per_page=100&include=emails,phone_numbers"

// SyncPeople pages through Planning Center People and upserts every person as
// a member keyed by external id.
func (c *Client) SyncPeople(ctx context.Context, churchID string) (domain.MemberImportResult, error) {
	var result domain.MemberImportResult
	hc, src, initial, err := c.httpClient(ctx, churchID)
	if err != nil {
		return result, err
	}
	defer c.persistRefreshed(ctx, churchID, src, initial)

	next := c.baseURL + peoplePath
	for page := 0; next != "" && page < maxPages; page++ {
		body, err := c.get(ctx, hc, next)
		if err != nil {
			return result, err
		}
		doc := gjson.ParseBytes(body)
		included := indexIncluded(doc.Get("included"))
		for _, person := range doc.Get("data").Array() {
			m := personToMember(churchID, person, included)
			if err := m.Validate(); err != nil {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("person %s: %v", m.ExternalID, err))
				continue
			}
			created, err := c.Members.UpsertExternal(ctx, &m)
			if err != nil {
				return result, fmt.Errorf("upsert person %s: %w", m.ExternalID, err)
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		next = doc.Get("links.next").String()
	}
	c.Logger.Info().
		Str("church_id", churchID).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Msg("planning center sync finished")
	return result, nil
}

// persistRefreshed stores the token again when the source refreshed it.
func (c *Client) persistRefreshed(ctx context.Context, churchID string, src oauth2.TokenSource, initial *oauth2.Token) {
	current, err := src.Token()
	if err != nil || current.AccessToken == initial.AccessToken {
		return
	}
	if err := c.saveToken(ctx, churchID, current); err != nil {
		c.Logger.Warn().Err(err).Str("church_id", churchID).Msg("persist refreshed planning center token failed")
	}
}

type contact struct {
	value   string
	primary bool
}

// indexIncluded maps "Type/id" to the contact value of included Email and
// PhoneNumber resources.
func indexIncluded(included gjson.Result) map[string]contact {
	out := map[string]contact{}
	for _, item := range included.Array() {
		kind := item.Get("type").String()
		var value string
		switch kind {
		case "Email":
			value = item.Get("attributes.address").String()
		case "PhoneNumber":
			value = item.Get("attributes.number").String()
		default:
			continue
		}
		out[kind+"/"+item.Get("id").String()] = contact{value: value, primary: item.Get("attributes.primary").Bool()}
	}
	return out
}

func personToMember(churchID string, person gjson.Result, included map[string]contact) domain.Member {
	attrs := person.Get("attributes")
	return domain.Member{
		ChurchID:   churchID,
		ExternalID: person.Get("id").String(),
		FirstName:  attrs.Get("first_name").String(),
		LastName:   attrs.Get("last_name").String(),
		Email:      pickContact(person.Get("relationships.emails.data"), "Email", included),
		Phone:      pickContact(person.Get("relationships.phone_numbers.data"), "PhoneNumber", included),
	}
}

// pickContact prefers the primary entry and falls back to the first one.
func pickContact(refs gjson.Result, kind string, included map[string]contact) string {
	var first string
	for _, ref := range refs.Array() {
		c, ok := included[kind+"/"+ref.Get("id").String()]
		if !ok || c.value == "" {
			continue
		}
		if c.primary {
			return c.value
		}
		if first == "" {
			first = c.value
		}
	}
	return first
}
