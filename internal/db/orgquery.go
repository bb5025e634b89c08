package db

import (
	"context"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"

	"forms-backend-go/internal/models"
)

// docResult is one raw document returned by a collection query.
type docResult struct {
	ID   string
	Data map[string]interface{}
}

// predicateQuery is one constituent query of an org-membership fetch.
type predicateQuery func(ctx context.Context) ([]docResult, error)

// mergePredicates runs the constituent queries concurrently and merges their
// results by document identity, so a document matched by several predicates
// appears exactly once. A failing predicate (typically a missing index)
// degrades to zero results from that predicate instead of aborting the
// merge; the failure is logged and the remaining predicates still count.
func mergePredicates(ctx context.Context, logger *zap.Logger, predicates []predicateQuery) []docResult {
	results := make([][]docResult, len(predicates))

	g, gctx := errgroup.WithContext(ctx)
	for i, predicate := range predicates {
		g.Go(func() error {
			docs, err := predicate(gctx)
			if err != nil {
				logger.Warn("org predicate query failed; excluding it from the merge", zap.Error(err))
				return nil
			}
			results[i] = docs
			return nil
		})
	}
	// Predicate errors are swallowed above, so Wait only reflects ctx state.
	_ = g.Wait()

	seen := make(map[string]struct{})
	var merged []docResult
	for _, docs := range results {
		for _, doc := range docs {
			if _, dup := seen[doc.ID]; dup {
				continue
			}
			seen[doc.ID] = struct{}{}
			merged = append(merged, doc)
		}
	}
	return merged
}

// fetchByAnyOrg returns every document in the collection whose org field
// (stored as scalar or array) intersects the given orgs. The store cannot
// express that as one predicate, so it is approximated by one
// array-contains-any query plus one equality query per org, merged by
// document identity. An empty org set short-circuits without querying.
func fetchByAnyOrg(ctx context.Context, logger *zap.Logger, coll *firestore.CollectionRef, orgs models.OrgSet) []docResult {
	if len(orgs) == 0 {
		return nil
	}

	predicates := []predicateQuery{
		// Documents with org stored as an array.
		func(ctx context.Context) ([]docResult, error) {
			return runQuery(ctx, coll.Where("org", "array-contains-any", orgs.Strings()))
		},
	}
	// Documents with org stored as a scalar string.
	for _, org := range orgs {
		predicates = append(predicates, func(ctx context.Context) ([]docResult, error) {
			return runQuery(ctx, coll.Where("org", "==", org))
		})
	}

	return mergePredicates(ctx, logger, predicates)
}

// fetchAll returns the whole collection, used for the Admin bypass.
// orderByCreatedAt applies the store's createdAt descending order; the
// unpaginated variant keeps default store order.
func fetchAll(ctx context.Context, coll *firestore.CollectionRef, orderByCreatedAt bool) ([]docResult, error) {
	var q firestore.Query = coll.Query
	if orderByCreatedAt {
		q = q.OrderBy("createdAt", firestore.Desc)
	}
	return runQuery(ctx, q)
}

func runQuery(ctx context.Context, q firestore.Query) ([]docResult, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []docResult
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, docResult{ID: doc.Ref.ID, Data: doc.Data()})
	}
	return out, nil
}
