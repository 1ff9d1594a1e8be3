// Package semantic is the sole owner of all Qdrant operations on the tool
// index: collection lifecycle, upserts during ingestion, and filtered
// similarity search at query time.
package semantic

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/AdvisorAI/advisor-mvp/engine/domain"
)

// Store holds the gRPC clients for one Qdrant collection.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// New connects to Qdrant at the given gRPC address.
func New(addr, collection string) (*Store, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("semantic: dial qdrant %s: %w", addr, err)
	}
	s := newWithClients(pb.NewPointsClient(conn), pb.NewCollectionsClient(conn), collection)
	s.conn = conn
	return s, nil
}

// newWithClients wires a Store from prebuilt clients. Used by tests.
func newWithClients(points pb.PointsClient, collections pb.CollectionsClient, collection string) *Store {
	return &Store{points: points, collections: collections, collection: collection}
}

// Close closes the underlying gRPC connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// exists reports whether the collection is present.
func (s *Store) exists(ctx context.Context) (bool, error) {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return false, fmt.Errorf("semantic: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			return true, nil
		}
	}
	return false, nil
}

// create creates the collection with cosine distance.
func (s *Store) create(ctx context.Context, dims int) error {
	_, err := s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("semantic: create collection %s: %w", s.collection, err)
	}
	return nil
}

// EnsureCollection creates the collection if it does not exist yet.
func (s *Store) EnsureCollection(ctx context.Context, dims int) error {
	ok, err := s.exists(ctx)
	if err != nil || ok {
		return err
	}
	return s.create(ctx, dims)
}

// Recreate drops and recreates the collection. Ingestion calls this first
// so that rebuilding from the same catalog always overwrites the prior
// index rather than accumulating stale points.
func (s *Store) Recreate(ctx context.Context, dims int) error {
	ok, err := s.exists(ctx)
	if err != nil {
		return err
	}
	if ok {
		if _, err := s.collections.Delete(ctx, &pb.DeleteCollection{CollectionName: s.collection}); err != nil {
			return fmt.Errorf("semantic: delete collection %s: %w", s.collection, err)
		}
	}
	return s.create(ctx, dims)
}

// Upsert writes embedded documents into the collection.
func (s *Store) Upsert(ctx context.Context, records []VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: r.ID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: r.Embedding},
				},
			},
			Payload: payloadFromDoc(r.Doc),
		}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("semantic: upsert %d points: %w", len(records), err)
	}
	return nil
}

// Count returns the number of points in the collection.
func (s *Store) Count(ctx context.Context) (uint64, error) {
	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, mapNotFound(fmt.Errorf("semantic: count: %w", err), err)
	}
	return resp.GetResult().GetCount(), nil
}

// Search returns the k nearest documents, hard pre-filtered to the allowed
// pricing classes when the filter is non-empty. When fewer than k
// candidates match the filter, all of them are returned; that is not an
// error. Results are ordered by descending similarity.
func (s *Store) Search(ctx context.Context, embedding []float32, k int, filter domain.PricingFilter) ([]Hit, error) {
	req := &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         embedding,
		Limit:          uint64(k),
		Filter:         pricingFilter(filter),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	}

	resp, err := s.points.Search(ctx, req)
	if err != nil {
		return nil, mapNotFound(fmt.Errorf("semantic: search: %w", err), err)
	}

	hits := make([]Hit, len(resp.GetResult()))
	for i, r := range resp.GetResult() {
		hits[i] = Hit{
			Doc:   docFromPayload(r.GetId().GetUuid(), r.GetPayload()),
			Score: r.GetScore(),
		}
	}
	return hits, nil
}

// mapNotFound translates Qdrant's NotFound (collection absent, meaning
// ingestion has never run) into the domain taxonomy.
func mapNotFound(wrapped, cause error) error {
	if status.Code(cause) == codes.NotFound {
		return fmt.Errorf("%w: %v", domain.ErrIndexNotFound, wrapped)
	}
	return wrapped
}
