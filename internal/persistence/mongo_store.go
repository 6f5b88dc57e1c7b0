package persistence

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petrijr/pager/pkg/diary"
)

// MongoStore is a diary.Store backed by a MongoDB collection. Ids are
// allocated from a counter document in a sibling "counters" collection.
type MongoStore struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

// Ensure it implements diary.Store.
var _ diary.Store = (*MongoStore)(nil)

// NewMongoStore creates a Mongo-backed food store.
// dbName defaults to "pager" if empty, collName defaults to "food_entries".
func NewMongoStore(client *mongo.Client, dbName, collName string) *MongoStore {
	if dbName == "" {
		dbName = "pager"
	}
	if collName == "" {
		collName = "food_entries"
	}

	db := client.Database(dbName)
	return &MongoStore{
		coll:     db.Collection(collName),
		counters: db.Collection("counters"),
	}
}

// EnsureIndexes creates the index that backs ListPaginated ordering.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	})
	return err
}

type mongoFoodDoc struct {
	ID        int64   `bson:"_id"`
	Name      string  `bson:"name"`
	Calories  float64 `bson:"calories"`
	Protein   float64 `bson:"protein"`
	Carbs     float64 `bson:"carbs"`
	Fat       float64 `bson:"fat"`
	CreatedAt int64   `bson:"created_at"`
}

func toMongoDoc(f diary.Food) mongoFoodDoc {
	return mongoFoodDoc{
		ID:        f.ID,
		Name:      f.Name,
		Calories:  f.Calories,
		Protein:   f.Protein,
		Carbs:     f.Carbs,
		Fat:       f.Fats,
		CreatedAt: toMillis(f.CreatedAt),
	}
}

func (d mongoFoodDoc) food() diary.Food {
	return diary.Food{
		ID:        d.ID,
		Name:      d.Name,
		Calories:  d.Calories,
		Protein:   d.Protein,
		Carbs:     d.Carbs,
		Fats:      d.Fat,
		CreatedAt: fromMillis(d.CreatedAt),
	}
}

func (s *MongoStore) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": s.coll.Name()},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	return counter.Seq, err
}

func (s *MongoStore) Insert(ctx context.Context, f diary.Food) (int64, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}

	if f.ID == 0 {
		id, err := s.nextID(ctx)
		if err != nil {
			return 0, err
		}
		f.ID = id
	}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": f.ID}, toMongoDoc(f), options.Replace().SetUpsert(true))
	if err != nil {
		return 0, err
	}
	return f.ID, nil
}

func (s *MongoStore) Update(ctx context.Context, f diary.Food) error {
	if err := f.Validate(); err != nil {
		return err
	}

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": f.ID}, toMongoDoc(f))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return diary.ErrEntryNotFound
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id int64) (diary.Food, error) {
	var doc mongoFoodDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return diary.Food{}, diary.ErrEntryNotFound
		}
		return diary.Food{}, err
	}
	return doc.food(), nil
}

func (s *MongoStore) Delete(ctx context.Context, id int64) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoStore) DeleteMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}

func (s *MongoStore) ListAll(ctx context.Context) ([]diary.Food, error) {
	return s.find(ctx, options.Find().SetSort(newestFirst))
}

func (s *MongoStore) ListPaginated(ctx context.Context, offset, limit int) ([]diary.Food, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return []diary.Food{}, nil
	}
	return s.find(ctx, options.Find().
		SetSort(newestFirst).
		SetSkip(int64(offset)).
		SetLimit(int64(limit)),
	)
}

func (s *MongoStore) CountAll(ctx context.Context) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	return int(n), err
}

func (s *MongoStore) DailyStats(ctx context.Context, r diary.TimeRange) (diary.DailyStats, error) {
	lo, hi := millisRange(r)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": lo, "$lte": hi}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "calories", Value: bson.M{"$sum": "$calories"}},
			{Key: "protein", Value: bson.M{"$sum": "$protein"}},
			{Key: "carbs", Value: bson.M{"$sum": "$carbs"}},
			{Key: "fat", Value: bson.M{"$sum": "$fat"}},
		}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return diary.DailyStats{}, err
	}
	defer cur.Close(ctx)

	var agg struct {
		Calories float64 `bson:"calories"`
		Protein  float64 `bson:"protein"`
		Carbs    float64 `bson:"carbs"`
		Fat      float64 `bson:"fat"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&agg); err != nil {
			return diary.DailyStats{}, err
		}
	}
	if err := cur.Err(); err != nil {
		return diary.DailyStats{}, err
	}

	return diary.DailyStats{
		TotalCalories: int(agg.Calories),
		Protein:       agg.Protein,
		Carbs:         agg.Carbs,
		Fat:           agg.Fat,
	}, nil
}

func (s *MongoStore) find(ctx context.Context, opts *options.FindOptions) ([]diary.Food, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]diary.Food, 0)
	for cur.Next(ctx) {
		var doc mongoFoodDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.food())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
