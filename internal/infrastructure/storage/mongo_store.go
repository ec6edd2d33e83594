package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"JobScanner/internal/domain"
	"JobScanner/internal/ports"
)

const jobsCollection = "job_postings"

// MongoStore keeps postings in a MongoDB collection with a unique index on identity_key.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ ports.JobStore = (*MongoStore)(nil)

// NewMongoStore connects, pings and ensures indexes.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	store := &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(jobsCollection),
	}
	if err := store.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return store, nil
}

// Close disconnects the client.
func (m *MongoStore) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

func (m *MongoStore) ensureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "identity_key", Value: 1}},
			Options: options.Index().SetName("identity_key_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "last_seen_at", Value: 1}},
			Options: options.Index().SetName("last_seen_at_idx"),
		},
		{
			Keys:    bson.D{{Key: "posted_at", Value: -1}},
			Options: options.Index().SetName("posted_at_idx"),
		},
	}
	if _, err := m.collection.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Upsert reads the current document and either inserts or updates it. The
// unique index turns a concurrent first insert into domain.ErrUpsertConflict.
func (m *MongoStore) Upsert(ctx context.Context, posting domain.JobPosting, seenAt time.Time) (domain.UpsertOutcome, error) {
	filter := bson.D{{Key: "identity_key", Value: posting.IdentityKey}}

	var current domain.JobPosting
	err := m.collection.FindOne(ctx, filter).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		posting.FirstSeenAt = seenAt
		posting.LastSeenAt = seenAt
		if posting.PostedAt.IsZero() {
			posting.PostedAt = seenAt
		}
		if _, err := m.collection.InsertOne(ctx, posting); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return "", domain.ErrUpsertConflict
			}
			return "", fmt.Errorf("insert posting: %w", err)
		}
		return domain.OutcomeInserted, nil
	}
	if err != nil {
		return "", fmt.Errorf("find posting: %w", err)
	}

	set := bson.M{}
	if posting.MatchedRole != "" {
		set["matched_role"] = posting.MatchedRole
	}
	outcome := domain.OutcomeUnchanged
	if !current.SameDisplay(posting) {
		outcome = domain.OutcomeUpdated
		set["title"] = posting.Title
		set["location"] = posting.Location
		set["employment_type"] = posting.EmploymentType
	}

	update := bson.M{"$max": bson.M{"last_seen_at": seenAt}}
	if len(set) > 0 {
		update["$set"] = set
	}
	if _, err := m.collection.UpdateOne(ctx, filter, update); err != nil {
		return "", fmt.Errorf("update posting: %w", err)
	}
	return outcome, nil
}

// QueryByTimeRange counts and pages through matching documents, newest first.
func (m *MongoStore) QueryByTimeRange(ctx context.Context, q domain.JobQuery) (domain.JobPage, error) {
	filter := mongoFilter(q)

	total, err := m.collection.CountDocuments(ctx, filter)
	if err != nil {
		return domain.JobPage{}, fmt.Errorf("count postings: %w", err)
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "posted_at", Value: -1}, {Key: "identity_key", Value: 1}})
	if q.Offset > 0 {
		findOptions.SetSkip(int64(q.Offset))
	}
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}

	cursor, err := m.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return domain.JobPage{}, fmt.Errorf("find postings: %w", err)
	}
	defer cursor.Close(ctx)

	var jobs []domain.JobPosting
	if err := cursor.All(ctx, &jobs); err != nil {
		return domain.JobPage{}, fmt.Errorf("decode postings: %w", err)
	}
	return domain.JobPage{Jobs: jobs, Total: int(total)}, nil
}

// DeleteWhere removes every document the predicate selects.
func (m *MongoStore) DeleteWhere(ctx context.Context, p domain.DeletePredicate) (int64, error) {
	if p.Empty() {
		return 0, errEmptyPredicate
	}

	filter := bson.M{}
	if !p.LastSeenBefore.IsZero() {
		filter["last_seen_at"] = bson.M{"$lt": p.LastSeenBefore}
	}
	if p.Company != "" {
		filter["source_company"] = p.Company
	}

	res, err := m.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete postings: %w", err)
	}
	return res.DeletedCount, nil
}

// Get loads a document by identity key.
func (m *MongoStore) Get(ctx context.Context, key string) (domain.JobPosting, error) {
	var job domain.JobPosting
	err := m.collection.FindOne(ctx, bson.D{{Key: "identity_key", Value: key}}).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.JobPosting{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.JobPosting{}, fmt.Errorf("find posting: %w", err)
	}
	return job, nil
}

// Companies lists distinct source companies.
func (m *MongoStore) Companies(ctx context.Context) ([]string, error) {
	return m.distinct(ctx, "source_company")
}

// Roles lists distinct matched roles.
func (m *MongoStore) Roles(ctx context.Context) ([]string, error) {
	return m.distinct(ctx, "matched_role")
}

func (m *MongoStore) distinct(ctx context.Context, field string) ([]string, error) {
	var values []string
	res := m.collection.Distinct(ctx, field, bson.M{field: bson.M{"$ne": ""}})
	if err := res.Decode(&values); err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}
	sort.Strings(values)
	return values, nil
}

func mongoFilter(q domain.JobQuery) bson.M {
	filter := bson.M{}

	posted := bson.M{}
	if !q.Since.IsZero() {
		posted["$gte"] = q.Since
	}
	if !q.Until.IsZero() {
		posted["$lte"] = q.Until
	}
	if len(posted) > 0 {
		filter["posted_at"] = posted
	}

	if len(q.Roles) > 0 {
		filter["matched_role"] = bson.M{"$in": exactFold(q.Roles)}
	}
	if len(q.Companies) > 0 {
		filter["source_company"] = bson.M{"$in": exactFold(q.Companies)}
	}
	if q.Location != "" {
		filter["location"] = bson.Regex{Pattern: regexp.QuoteMeta(q.Location), Options: "i"}
	}
	if q.EmploymentType != "" {
		filter["employment_type"] = q.EmploymentType
	}
	if q.Search != "" {
		filter["title"] = bson.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
	}
	return filter
}

func exactFold(values []string) bson.A {
	out := make(bson.A, 0, len(values))
	for _, v := range values {
		out = append(out, bson.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"})
	}
	return out
}
