package semantic

import (
	"context"
	"errors"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/AdvisorAI/advisor-mvp/engine/domain"
)

// --- mocks ---

type mockPoints struct {
	pb.PointsClient
	upsertReq  *pb.UpsertPoints
	upsertErr  error
	searchReq  *pb.SearchPoints
	searchResp *pb.SearchResponse
	searchErr  error
	countResp  *pb.CountResponse
	countErr   error
}

func (m *mockPoints) Upsert(_ context.Context, req *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	m.upsertReq = req
	return &pb.PointsOperationResponse{}, m.upsertErr
}

func (m *mockPoints) Search(_ context.Context, req *pb.SearchPoints, _ ...grpc.CallOption) (*pb.SearchResponse, error) {
	m.searchReq = req
	return m.searchResp, m.searchErr
}

func (m *mockPoints) Count(_ context.Context, _ *pb.CountPoints, _ ...grpc.CallOption) (*pb.CountResponse, error) {
	return m.countResp, m.countErr
}

type mockCollections struct {
	pb.CollectionsClient
	existing  []string
	created   []string
	deleted   []string
	listErr   error
	createErr error
}

func (m *mockCollections) List(_ context.Context, _ *pb.ListCollectionsRequest, _ ...grpc.CallOption) (*pb.ListCollectionsResponse, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var descs []*pb.CollectionDescription
	for _, name := range m.existing {
		descs = append(descs, &pb.CollectionDescription{Name: name})
	}
	return &pb.ListCollectionsResponse{Collections: descs}, nil
}

func (m *mockCollections) Create(_ context.Context, req *pb.CreateCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	m.created = append(m.created, req.GetCollectionName())
	return &pb.CollectionOperationResponse{}, m.createErr
}

func (m *mockCollections) Delete(_ context.Context, req *pb.DeleteCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	m.deleted = append(m.deleted, req.GetCollectionName())
	return &pb.CollectionOperationResponse{}, nil
}

func testDoc() domain.Document {
	return domain.Document{
		ID:   "11111111-1111-1111-1111-111111111111",
		Text: "Tool Name: ToolA",
		Meta: domain.DocMeta{
			Name:     "ToolA",
			Category: "Image",
			Pricing:  domain.PricingFree,
			Website:  "https://toola.example",
		},
	}
}

// --- tests ---

func TestPayloadRoundTrip(t *testing.T) {
	doc := testDoc()
	got := docFromPayload(doc.ID, payloadFromDoc(doc))
	if got != doc {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, doc)
	}
}

func TestDocFromPayload_NormalizesPricing(t *testing.T) {
	payload := payloadFromDoc(testDoc())
	payload[keyPricing] = str("definitely-not-a-class")
	got := docFromPayload("id", payload)
	if got.Meta.Pricing != domain.PricingUnknown {
		t.Errorf("expected Unknown, got %q", got.Meta.Pricing)
	}
}

func TestPricingFilter(t *testing.T) {
	if pricingFilter(nil) != nil {
		t.Error("empty filter should produce no qdrant filter")
	}

	f := pricingFilter(domain.PricingFilter{domain.PricingFree, domain.PricingFreemium})
	if len(f.GetMust()) != 1 {
		t.Fatalf("expected a single must condition, got %d", len(f.GetMust()))
	}
	kw := f.GetMust()[0].GetField().GetMatch().GetKeywords().GetStrings()
	if len(kw) != 2 || kw[0] != "Free" || kw[1] != "Freemium" {
		t.Errorf("unexpected keywords: %v", kw)
	}
}

func TestEnsureCollection_AlreadyExists(t *testing.T) {
	cols := &mockCollections{existing: []string{"tools"}}
	s := newWithClients(&mockPoints{}, cols, "tools")
	if err := s.EnsureCollection(context.Background(), 4); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if len(cols.created) != 0 {
		t.Error("should not recreate an existing collection")
	}
}

func TestRecreate_DropsThenCreates(t *testing.T) {
	cols := &mockCollections{existing: []string{"tools"}}
	s := newWithClients(&mockPoints{}, cols, "tools")
	if err := s.Recreate(context.Background(), 4); err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if len(cols.deleted) != 1 || len(cols.created) != 1 {
		t.Errorf("deleted=%v created=%v", cols.deleted, cols.created)
	}
}

func TestRecreate_FreshCollection(t *testing.T) {
	cols := &mockCollections{}
	s := newWithClients(&mockPoints{}, cols, "tools")
	if err := s.Recreate(context.Background(), 4); err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if len(cols.deleted) != 0 || len(cols.created) != 1 {
		t.Errorf("deleted=%v created=%v", cols.deleted, cols.created)
	}
}

func TestUpsert_BuildsPoints(t *testing.T) {
	pts := &mockPoints{}
	s := newWithClients(pts, &mockCollections{}, "tools")

	doc := testDoc()
	err := s.Upsert(context.Background(), []VectorRecord{
		{ID: doc.ID, Embedding: []float32{0.1, 0.2}, Doc: doc},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	points := pts.upsertReq.GetPoints()
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	p := points[0]
	if p.GetId().GetUuid() != doc.ID {
		t.Errorf("point id mismatch: %s", p.GetId().GetUuid())
	}
	if p.GetPayload()[keyPricing].GetStringValue() != "Free" {
		t.Errorf("pricing payload missing: %v", p.GetPayload())
	}
}

func TestUpsert_Empty(t *testing.T) {
	pts := &mockPoints{}
	s := newWithClients(pts, &mockCollections{}, "tools")
	if err := s.Upsert(context.Background(), nil); err != nil {
		t.Fatalf("empty upsert should be a no-op: %v", err)
	}
	if pts.upsertReq != nil {
		t.Error("no request should be sent for an empty batch")
	}
}

func TestSearch_AppliesFilterAndDecodes(t *testing.T) {
	pts := &mockPoints{
		searchResp: &pb.SearchResponse{
			Result: []*pb.ScoredPoint{
				{
					Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: "id-1"}},
					Score:   0.91,
					Payload: payloadFromDoc(testDoc()),
				},
			},
		},
	}
	s := newWithClients(pts, &mockCollections{}, "tools")

	hits, err := s.Search(context.Background(), []float32{0.1}, 4, domain.PricingFilter{domain.PricingFree})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].Doc.Meta.Name != "ToolA" || hits[0].Score != 0.91 {
		t.Errorf("unexpected hits: %+v", hits)
	}
	if pts.searchReq.GetFilter() == nil {
		t.Error("pricing filter not forwarded to qdrant")
	}
	if pts.searchReq.GetLimit() != 4 {
		t.Errorf("limit not forwarded: %d", pts.searchReq.GetLimit())
	}
}

func TestSearch_MissingCollection(t *testing.T) {
	pts := &mockPoints{
		searchErr: status.Error(codes.NotFound, "collection tools not found"),
	}
	s := newWithClients(pts, &mockCollections{}, "tools")

	_, err := s.Search(context.Background(), []float32{0.1}, 4, nil)
	if !errors.Is(err, domain.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}
