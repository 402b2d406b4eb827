package pathstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/docguard/internal/supervisor"
)

// Verdict is the gate's decision on a stored summary.
type Verdict string

const (
	VerdictAccepted    Verdict = "accepted"
	VerdictNeedsReview Verdict = "needs_review"
)

// VerdictFor maps a supervision result to a verdict.
func VerdictFor(r supervisor.Result) Verdict {
	if r.Validation.Passed {
		return VerdictAccepted
	}
	return VerdictNeedsReview
}

// Review is everything stored for one supervised document.
type Review struct {
	UserID      string            `json:"user_id"`
	DocID       string            `json:"doc_id"`
	Filename    string            `json:"filename"`
	Title       string            `json:"title,omitempty"`
	ContentHash string            `json:"content_hash"`
	Verdict     Verdict           `json:"verdict"`
	Result      supervisor.Result `json:"result"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ReviewListing is the lightweight verdict node used for listings.
type ReviewListing struct {
	DocID     string    `json:"doc_id"`
	Filename  string    `json:"filename"`
	Verdict   Verdict   `json:"verdict"`
	Passed    bool      `json:"passed"`
	Retries   int       `json:"retries"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewStore lays reviews out as
//
//	reviews/{user}/{doc}/result
//	reviews/{user}/{doc}/verdict
//	reviews/{user}/by_hash/{hash}/{doc}
type ReviewStore struct {
	c *Client
}

func NewReviewStore(c *Client) *ReviewStore {
	return &ReviewStore{c: c}
}

func docPrefix(userID, docID string) string {
	return fmt.Sprintf("reviews/%s/%s", userID, docID)
}

func hashPath(userID, hash, docID string) string {
	return fmt.Sprintf("reviews/%s/by_hash/%s/%s", userID, hash, docID)
}

// PutReview writes the result, the verdict node and the hash index entry.
func (s *ReviewStore) PutReview(ctx context.Context, r Review) error {
	prefix := docPrefix(r.UserID, r.DocID)
	source := "docguard:" + r.DocID

	if err := s.c.PutNode(ctx, prefix+"/result", NodeRequest{
		Value:      r,
		MemoryType: "metacognitive",
		Salience:   0.5,
		Source:     source,
	}); err != nil {
		return err
	}
	if err := s.c.PutNode(ctx, prefix+"/verdict", NodeRequest{
		Value: ReviewListing{
			DocID:     r.DocID,
			Filename:  r.Filename,
			Verdict:   r.Verdict,
			Passed:    r.Result.Validation.Passed,
			Retries:   r.Result.Validation.Retries,
			CreatedAt: r.CreatedAt,
		},
		MemoryType: "metacognitive",
		Salience:   0.3,
		Source:     source,
	}); err != nil {
		return err
	}
	if r.ContentHash == "" {
		return nil
	}
	return s.c.PutNode(ctx, hashPath(r.UserID, r.ContentHash, r.DocID), NodeRequest{
		Value:      map[string]any{"filename": r.Filename, "created_at": r.CreatedAt.Format(time.RFC3339)},
		MemoryType: "metacognitive",
		Salience:   0.1,
		Source:     source,
	})
}

// GetReview loads a stored review, or nil if there is none.
func (s *ReviewStore) GetReview(ctx context.Context, userID, docID string) (*Review, error) {
	node, err := s.c.GetNode(ctx, docPrefix(userID, docID)+"/result")
	if err != nil || node == nil {
		return nil, err
	}
	var r Review
	if err := json.Unmarshal(node.Value, &r); err != nil {
		return nil, fmt.Errorf("decode review %s: %w", docID, err)
	}
	return &r, nil
}

// FindByHash returns the doc ID of an earlier review of the same content.
func (s *ReviewStore) FindByHash(ctx context.Context, userID, hash string) (string, bool, error) {
	children, err := s.c.ListChildren(ctx, fmt.Sprintf("reviews/%s/by_hash/%s", userID, hash), 1)
	if err != nil {
		return "", false, err
	}
	if len(children) == 0 {
		return "", false, nil
	}
	return lastSegment(children[0].Key), true, nil
}

// ListReviews returns up to limit verdict nodes stored for a user. A
// non-positive limit returns them all.
func (s *ReviewStore) ListReviews(ctx context.Context, userID string, limit int) ([]ReviewListing, error) {
	// The scan also returns result and hash-index nodes, so the limit is
	// applied to verdicts here rather than by the service.
	children, err := s.c.ListChildren(ctx, "reviews/"+userID, 0)
	if err != nil {
		return nil, err
	}
	out := []ReviewListing{}
	for _, child := range children {
		if lastSegment(child.Key) != "verdict" {
			continue
		}
		var l ReviewListing
		if err := json.Unmarshal(child.Value, &l); err != nil {
			continue
		}
		out = append(out, l)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// DeleteReview removes a review and its hash index entry. It reports
// whether a review existed.
func (s *ReviewStore) DeleteReview(ctx context.Context, userID, docID string) (bool, error) {
	r, err := s.GetReview(ctx, userID, docID)
	if err != nil {
		return false, err
	}
	if r == nil {
		return false, nil
	}
	if r.ContentHash != "" {
		if err := s.c.DeleteNode(ctx, hashPath(userID, r.ContentHash, docID), false); err != nil {
			return true, err
		}
	}
	return true, s.c.DeleteNode(ctx, docPrefix(userID, docID), true)
}

// lastSegment handles both "a/b/c" and the service's "a.b.c" key form.
func lastSegment(key string) string {
	key = strings.ReplaceAll(key, "/", ".")
	return key[strings.LastIndex(key, ".")+1:]
}
