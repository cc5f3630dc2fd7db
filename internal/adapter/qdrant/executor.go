package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/vecspace/internal/adapter/pointconv"
	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/backend"
	"github.com/kailas-cloud/vecspace/internal/domain/point"
	"github.com/kailas-cloud/vecspace/internal/domain/query"
)

// PointsClient is the part of *qdrant.Client the executor calls.
type PointsClient interface {
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Get(ctx context.Context, request *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error)
	Scroll(ctx context.Context, request *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error)
}

// Executor runs native Qdrant JSON queries over the gRPC client.
type Executor struct {
	client     PointsClient
	collection string
}

// NewExecutor creates a Qdrant executor bound to one collection.
func NewExecutor(client PointsClient, collection string) *Executor {
	return &Executor{client: client, collection: collection}
}

type nativeQuery struct {
	IDs            []any          `json:"ids"`
	Recommend      *recommend     `json:"recommend"`
	Vector         []float32      `json:"vector"`
	Filter         map[string]any `json:"filter"`
	Limit          int            `json:"limit"`
	ScoreThreshold *float32       `json:"score_threshold"`
}

type recommend struct {
	Positive []any `json:"positive"`
	Negative []any `json:"negative"`
}

// Execute routes the query like the REST client does: ids → get,
// recommend → recommend query, vector → search, filter → scroll.
func (e *Executor) Execute(ctx context.Context, raw string) ([]point.Point, error) {
	var q nativeQuery
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(&q); err != nil {
		return nil, fmt.Errorf("%w: qdrant query: %w", domain.ErrInvalidQuery, err)
	}

	filter, err := grpcFilter(q.Filter)
	if err != nil {
		return nil, err
	}

	var resp map[string]any
	switch {
	case q.IDs != nil:
		resp, err = e.get(ctx, q.IDs)
	case q.Recommend != nil:
		resp, err = e.recommend(ctx, q, filter)
	case q.Vector != nil:
		resp, err = e.search(ctx, q, filter)
	case q.Filter != nil:
		resp, err = e.scroll(ctx, q, filter)
	default:
		return nil, fmt.Errorf("%w: need vector, ids, recommend, or filter", domain.ErrInvalidQuery)
	}
	if err != nil {
		return nil, err
	}
	return Normalize(resp, query.NormalizeOptions{}), nil
}

func (e *Executor) get(ctx context.Context, rawIDs []any) (map[string]any, error) {
	ids, err := pointIDs(rawIDs)
	if err != nil {
		return nil, err
	}
	points, err := e.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: e.collection,
		Ids:            ids,
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, domain.NewBackendError(backend.Qdrant, err)
	}
	return retrievedToRaw(points), nil
}

func (e *Executor) recommend(ctx context.Context, q nativeQuery, filter *qdrant.Filter) (map[string]any, error) {
	positive, err := vectorInputs(q.Recommend.Positive)
	if err != nil {
		return nil, err
	}
	negative, err := vectorInputs(q.Recommend.Negative)
	if err != nil {
		return nil, err
	}
	points, err := e.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: e.collection,
		Query: qdrant.NewQueryRecommend(&qdrant.RecommendInput{
			Positive: positive,
			Negative: negative,
		}),
		Filter:      filter,
		Limit:       qdrant.PtrOf(uint64(limitOr(q.Limit, query.DefaultSimilarityLimit))),
		WithPayload: qdrant.NewWithPayload(true),
		WithVectors: qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, domain.NewBackendError(backend.Qdrant, err)
	}
	return scoredToRaw(points), nil
}

func (e *Executor) search(ctx context.Context, q nativeQuery, filter *qdrant.Filter) (map[string]any, error) {
	points, err := e.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: e.collection,
		Query:          qdrant.NewQuery(q.Vector...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limitOr(q.Limit, query.DefaultSimilarityLimit))),
		ScoreThreshold: q.ScoreThreshold,
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, domain.NewBackendError(backend.Qdrant, err)
	}
	return scoredToRaw(points), nil
}

func (e *Executor) scroll(ctx context.Context, q nativeQuery, filter *qdrant.Filter) (map[string]any, error) {
	points, err := e.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: e.collection,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint32(limitOr(q.Limit, query.DefaultFetchLimit))),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, domain.NewBackendError(backend.Qdrant, err)
	}
	return retrievedToRaw(points), nil
}

func limitOr(limit, def int) int {
	if limit > 0 {
		return limit
	}
	return def
}

// --- native JSON filter → gRPC filter ---

func grpcFilter(native map[string]any) (*qdrant.Filter, error) {
	if len(native) == 0 {
		return nil, nil
	}
	must, err := grpcConditions(native["must"])
	if err != nil {
		return nil, err
	}
	should, err := grpcConditions(native["should"])
	if err != nil {
		return nil, err
	}
	mustNot, err := grpcConditions(native["must_not"])
	if err != nil {
		return nil, err
	}
	return &qdrant.Filter{Must: must, Should: should, MustNot: mustNot}, nil
}

func grpcConditions(v any) ([]*qdrant.Condition, error) {
	list := pointconv.List(v)
	if list == nil {
		return nil, nil
	}
	out := make([]*qdrant.Condition, 0, len(list))
	for _, item := range list {
		m := pointconv.Map(item)
		if m == nil {
			return nil, fmt.Errorf("%w: qdrant filter condition must be an object", domain.ErrInvalidQuery)
		}
		cond, err := grpcCondition(m)
		if err != nil {
			return nil, err
		}
		out = append(out, cond)
	}
	return out, nil
}

func grpcCondition(m map[string]any) (*qdrant.Condition, error) {
	if _, nested := pointconv.FirstPresent(m, "must", "should", "must_not"); nested {
		f, err := grpcFilter(m)
		if err != nil {
			return nil, err
		}
		return &qdrant.Condition{ConditionOneOf: &qdrant.Condition_Filter{Filter: f}}, nil
	}

	key, _ := m["key"].(string)
	if key == "" {
		return nil, fmt.Errorf("%w: qdrant filter condition needs a key", domain.ErrInvalidQuery)
	}
	if match := pointconv.Map(m["match"]); match != nil {
		return grpcMatch(key, match)
	}
	if rng := pointconv.Map(m["range"]); rng != nil {
		return grpcRange(key, rng)
	}
	return nil, fmt.Errorf("%w: qdrant condition on %q needs match or range", domain.ErrInvalidQuery, key)
}

func grpcMatch(key string, match map[string]any) (*qdrant.Condition, error) {
	if text, ok := match["text"].(string); ok {
		return fieldCondition(&qdrant.FieldCondition{
			Key:   key,
			Match: &qdrant.Match{MatchValue: &qdrant.Match_Text{Text: text}},
		}), nil
	}
	if values, ok := match["any"].([]any); ok {
		return grpcMatchAny(key, values)
	}

	switch v := match["value"].(type) {
	case string:
		return qdrant.NewMatchKeyword(key, v), nil
	case bool:
		return qdrant.NewMatchBool(key, v), nil
	case nil:
		return nil, fmt.Errorf("%w: qdrant match on %q needs value, text or any", domain.ErrInvalidQuery, key)
	default:
		if n, ok := integer(v); ok {
			return qdrant.NewMatchInt(key, n), nil
		}
		f, ok := pointconv.Float(v)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported match value %T for %q", domain.ErrInvalidQuery, v, key)
		}
		// no float match in qdrant: equal bounds on a range
		return fieldCondition(&qdrant.FieldCondition{Key: key, Range: &qdrant.Range{Gte: &f, Lte: &f}}), nil
	}
}

func grpcMatchAny(key string, values []any) (*qdrant.Condition, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: qdrant match any on %q needs at least one value", domain.ErrInvalidQuery, key)
	}
	if _, isString := values[0].(string); isString {
		keywords := make([]string, len(values))
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: match any values on %q must share a type", domain.ErrInvalidQuery, key)
			}
			keywords[i] = s
		}
		return qdrant.NewMatchKeywords(key, keywords...), nil
	}
	ints := make([]int64, len(values))
	for i, v := range values {
		n, ok := integer(v)
		if !ok {
			return nil, fmt.Errorf("%w: match any on %q supports strings or integers", domain.ErrInvalidQuery, key)
		}
		ints[i] = n
	}
	return qdrant.NewMatchInts(key, ints...), nil
}

func grpcRange(key string, rng map[string]any) (*qdrant.Condition, error) {
	r := &qdrant.Range{}
	bounds := map[string]**float64{"gt": &r.Gt, "gte": &r.Gte, "lt": &r.Lt, "lte": &r.Lte}
	for name, dst := range bounds {
		raw, ok := rng[name]
		if !ok {
			continue
		}
		f, ok := pointconv.Float(raw)
		if !ok {
			return nil, fmt.Errorf("%w: range %s on %q must be numeric", domain.ErrInvalidQuery, name, key)
		}
		*dst = &f
	}
	return fieldCondition(&qdrant.FieldCondition{Key: key, Range: r}), nil
}

func fieldCondition(fc *qdrant.FieldCondition) *qdrant.Condition {
	return &qdrant.Condition{ConditionOneOf: &qdrant.Condition_Field{Field: fc}}
}

func integer(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := strconv.ParseInt(n.String(), 10, 64)
		return i, err == nil
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int64(n), true
		}
	}
	return 0, false
}

// --- ids ---

func pointID(v any) (*qdrant.PointId, error) {
	switch id := v.(type) {
	case string:
		if u, err := uuid.Parse(id); err == nil {
			return qdrant.NewID(u.String()), nil
		}
		if n, err := strconv.ParseUint(id, 10, 64); err == nil {
			return qdrant.NewIDNum(n), nil
		}
	default:
		if n, ok := integer(id); ok && n >= 0 {
			return qdrant.NewIDNum(uint64(n)), nil
		}
	}
	return nil, fmt.Errorf("%w: qdrant point id %v is neither a UUID nor an unsigned integer", domain.ErrInvalidQuery, v)
}

func pointIDs(raw []any) ([]*qdrant.PointId, error) {
	out := make([]*qdrant.PointId, 0, len(raw))
	for _, v := range raw {
		id, err := pointID(v)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func vectorInputs(raw []any) ([]*qdrant.VectorInput, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	ids, err := pointIDs(raw)
	if err != nil {
		return nil, err
	}
	out := make([]*qdrant.VectorInput, len(ids))
	for i, id := range ids {
		out[i] = qdrant.NewVectorInputID(id)
	}
	return out, nil
}

// --- gRPC results → REST-shaped raw response ---

func scoredToRaw(points []*qdrant.ScoredPoint) map[string]any {
	result := make([]any, 0, len(points))
	for _, sp := range points {
		rec := map[string]any{
			"id":      idValue(sp.GetId()),
			"score":   float64(sp.GetScore()),
			"payload": fromPayload(sp.GetPayload()),
		}
		if data := sp.GetVectors().GetVector().GetData(); len(data) > 0 {
			rec["vector"] = data
		}
		result = append(result, rec)
	}
	return map[string]any{"result": result}
}

func retrievedToRaw(points []*qdrant.RetrievedPoint) map[string]any {
	result := make([]any, 0, len(points))
	for _, rp := range points {
		rec := map[string]any{
			"id":      idValue(rp.GetId()),
			"payload": fromPayload(rp.GetPayload()),
		}
		if data := rp.GetVectors().GetVector().GetData(); len(data) > 0 {
			rec["vector"] = data
		}
		result = append(result, rec)
	}
	return map[string]any{"result": result}
}

func idValue(id *qdrant.PointId) any {
	if u := id.GetUuid(); u != "" {
		return u
	}
	return id.GetNum()
}

func fromPayload(payload map[string]*qdrant.Value) map[string]any {
	m := make(map[string]any, len(payload))
	for k, v := range payload {
		m[k] = fromValue(v)
	}
	return m
}

func fromValue(v *qdrant.Value) any {
	switch v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return v.GetStringValue()
	case *qdrant.Value_DoubleValue:
		return v.GetDoubleValue()
	case *qdrant.Value_IntegerValue:
		return v.GetIntegerValue()
	case *qdrant.Value_BoolValue:
		return v.GetBoolValue()
	case *qdrant.Value_StructValue:
		return fromPayload(v.GetStructValue().GetFields())
	case *qdrant.Value_ListValue:
		items := v.GetListValue().GetValues()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = fromValue(item)
		}
		return out
	default:
		return nil
	}
}
