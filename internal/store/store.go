// Package store keeps computed counts in Firestore so that expensive runs are not repeated.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// Collection is the Firestore collection holding results.
const Collection = "primitive_sorting_networks"

var (
	// ErrNotFound is returned by Lookup when no result is stored for n.
	ErrNotFound = errors.New("store: no stored result")

	// ErrConflict is returned by Lookup when stored results for the same n disagree.
	ErrConflict = errors.New("store: stored results disagree")
)

// Result is how a count is stored in Firestore. Big numbers are stored as decimal strings because
// Firestore integers are limited to int64.
type Result struct {
	N         int       `firestore:"n"`
	Count     string    `firestore:"count"`
	Moduli    []string  `firestore:"moduli"`
	Verified  bool      `firestore:"verified"`
	ElapsedMS int64     `firestore:"elapsed_ms"`
	Timestamp time.Time `firestore:"timestamp,serverTimestamp"`
}

// NewResult builds a Result for storage.
func NewResult(n int, count *big.Int, moduli []uint64, verified bool, elapsed time.Duration) Result {
	mods := make([]string, len(moduli))
	for i, m := range moduli {
		mods[i] = strconv.FormatUint(m, 10)
	}
	return Result{
		N:         n,
		Count:     count.String(),
		Moduli:    mods,
		Verified:  verified,
		ElapsedMS: elapsed.Milliseconds(),
	}
}

// Big parses the stored count.
func (r Result) Big() (*big.Int, error) {
	c, ok := new(big.Int).SetString(r.Count, 10)
	if !ok {
		return nil, fmt.Errorf("store: count %q for n = %d is not an integer", r.Count, r.N)
	}
	return c, nil
}

// Store reads and writes results in a Firestore project.
type Store struct {
	client *firestore.Client
}

// New connects to Firestore in the given project.
func New(ctx context.Context, projectID string) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: connecting to project %q: %w", projectID, err)
	}
	return &Store{client: client}, nil
}

// Close releases the Firestore client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Save writes r as a new document and returns its reference.
func (s *Store) Save(ctx context.Context, r Result) (*firestore.DocumentRef, error) {
	ref := s.client.Collection(Collection).NewDoc()
	if _, err := ref.Create(ctx, &r); err != nil {
		return nil, fmt.Errorf("store: saving n = %d: %w", r.N, err)
	}
	log.Printf("stored n = %d as %s", r.N, ref.ID)
	return ref, nil
}

// Lookup returns a stored result for n, preferring verified results. Every stored count for n must agree.
func (s *Store) Lookup(ctx context.Context, n int) (*Result, error) {
	docItr := s.client.Collection(Collection).Where("n", "==", n).Documents(ctx)
	defer docItr.Stop()

	var best *Result
	for {
		doc, err := docItr.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store: looking up n = %d: %w", n, err)
		}

		var r Result
		if err := doc.DataTo(&r); err != nil {
			return nil, fmt.Errorf("store: decoding %s: %w", doc.Ref.ID, err)
		}
		best, err = prefer(best, &r)
		if err != nil {
			return nil, fmt.Errorf("%w: document %s", err, doc.Ref.ID)
		}
	}

	if best == nil {
		return nil, fmt.Errorf("n = %d: %w", n, ErrNotFound)
	}
	return best, nil
}

// prefer picks between two stored results for the same n, favoring verified and then more recent ones.
func prefer(a, b *Result) (*Result, error) {
	if a == nil {
		return b, nil
	}
	if a.Count != b.Count {
		return nil, fmt.Errorf("n = %d: %s != %s: %w", a.N, a.Count, b.Count, ErrConflict)
	}
	if a.Verified != b.Verified {
		if b.Verified {
			return b, nil
		}
		return a, nil
	}
	if b.Timestamp.After(a.Timestamp) {
		return b, nil
	}
	return a, nil
}
