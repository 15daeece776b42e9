// Package canvas reads upcoming assignments from the Canvas LMS REST API.
package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"queens/internal/apperrors"
	"queens/internal/config"
	"queens/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Window is how far ahead assignments are collected.
const Window = 7 * 24 * time.Hour

type course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type assignment struct {
	Name    string     `json:"name"`
	DueAt   *time.Time `json:"due_at"`
	HTMLURL string     `json:"html_url"`
}

// Client calls Canvas on behalf of a user, authenticated with their personal token.
type Client struct {
	httpClient     *http.Client
	log            logrus.FieldLogger
	baseURL        string
	maxConcurrency int
	now            func() time.Time
}

// NewClient creates a new Client.
func NewClient(httpClient *http.Client, cfg config.CanvasConfig, log logrus.FieldLogger) *Client {
	limit := cfg.MaxConcurrency
	if limit < 1 {
		limit = 1
	}
	return &Client{
		httpClient:     httpClient,
		log:            log,
		baseURL:        cfg.BaseURL,
		maxConcurrency: limit,
		now:            time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// UpcomingAssignments returns the assignments of all active courses that are
// due within Window, soonest first. Courses the user may not read are skipped.
func (c *Client) UpcomingAssignments(ctx context.Context, token string) ([]models.Assignment, error) {
	courses, err := c.courses(ctx, token)
	if err != nil {
		c.log.WithError(err).Error("failed to list canvas courses")
		return nil, apperrors.Unavailable("canvas", err)
	}

	perCourse := make([][]assignment, len(courses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrency)
	for i, crs := range courses {
		g.Go(func() error {
			list, err := c.courseAssignments(gctx, token, crs.ID)
			if err != nil {
				return fmt.Errorf("course %d: %w", crs.ID, err)
			}
			perCourse[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.log.WithError(err).Error("failed to fetch canvas assignments")
		return nil, apperrors.Unavailable("canvas", err)
	}

	start := c.now().UTC()
	end := start.Add(Window)
	type due struct {
		at time.Time
		a  models.Assignment
	}
	var upcoming []due
	for _, list := range perCourse {
		for _, a := range list {
			if a.DueAt == nil {
				continue
			}
			at := a.DueAt.UTC()
			if at.Before(start) || at.After(end) {
				continue
			}
			name := a.Name
			if name == "" {
				name = "Unnamed Assignment"
			}
			upcoming = append(upcoming, due{at: at, a: models.Assignment{
				Name:       name,
				DateDue:    at.Format("2006-01-02"),
				TimeDue:    at.Format("15:04"),
				CanvasLink: a.HTMLURL,
			}})
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].at.Before(upcoming[j].at) })

	result := make([]models.Assignment, 0, len(upcoming))
	for _, d := range upcoming {
		result = append(result, d.a)
	}
	c.log.WithFields(logrus.Fields{"courses": len(courses), "assignments": len(result)}).Info("fetched canvas assignments")
	return result, nil
}

func (c *Client) courses(ctx context.Context, token string) ([]course, error) {
	q := url.Values{}
	q.Set("enrollment_state", "active")
	q.Add("include[]", "term")
	q.Add("state[]", "available")
	q.Set("per_page", "100")

	var courses []course
	status, err := c.get(ctx, token, "/courses", q, &courses)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("canvas returned status %d for courses", status)
	}
	return courses, nil
}

func (c *Client) courseAssignments(ctx context.Context, token string, courseID int64) ([]assignment, error) {
	q := url.Values{}
	q.Add("include[]", "submission")
	q.Set("bucket", "upcoming")
	q.Set("per_page", "50")

	var list []assignment
	status, err := c.get(ctx, token, fmt.Sprintf("/courses/%d/assignments", courseID), q, &list)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return list, nil
	case http.StatusForbidden:
		c.log.WithField("course_id", courseID).Info("no access to course assignments")
		return nil, nil
	default:
		return nil, fmt.Errorf("canvas returned status %d", status)
	}
}

// get decodes a 200 response into out and returns the status code.
func (c *Client) get(ctx context.Context, token, path string, q url.Values, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return resp.StatusCode, nil
}
