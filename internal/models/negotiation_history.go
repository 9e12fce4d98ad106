package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	HistoryDbName  = "djlink"
	HistoryColName = "negotiation_rounds"
)

// RoundTerms is one entry in a proposal's negotiation history. The proposals
// row only carries the current round; the history keeps every round so an old
// chat bubble can always be tied to the terms it referenced.
type RoundTerms struct {
	Ronda             int       `bson:"ronda" json:"ronda"`
	Monto             int       `bson:"monto" json:"monto"`
	MontoContraoferta *int      `bson:"monto_contraoferta,omitempty" json:"monto_contraoferta,omitempty"`
	Actor             string    `bson:"actor" json:"actor"`
	EstadoResultante  string    `bson:"estado_resultante" json:"estado_resultante"`
	At                time.Time `bson:"at" json:"at"`
}

type NegotiationHistory struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProposalID uuid.UUID          `bson:"proposal_id" json:"proposal_id"`
	Rounds     []RoundTerms       `bson:"rounds" json:"rounds"`
	CreatedAt  time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt  time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

type NegotiationHistoryRepo interface {
	AppendRound(ctx context.Context, proposalID uuid.UUID, round RoundTerms) (*NegotiationHistory, error)
	GetHistory(ctx context.Context, proposalID uuid.UUID) (*NegotiationHistory, error)
}

func (mdb *MongodbRepo) AppendRound(ctx context.Context, proposalID uuid.UUID, round RoundTerms) (*NegotiationHistory, error) {
	col, err := mdb.GetCollection(ctx, HistoryDbName, HistoryColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	if round.At.IsZero() {
		round.At = now
	}

	filter := bson.M{"proposal_id": proposalID}
	update := bson.M{
		"$push": bson.M{"rounds": round},
		"$set":  bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"proposal_id": proposalID,
			"created_at":  now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result NegotiationHistory
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, fmt.Errorf("error upserting negotiation round: %v", err)
	}

	return &result, nil
}

func (mdb *MongodbRepo) GetHistory(ctx context.Context, proposalID uuid.UUID) (*NegotiationHistory, error) {
	col, err := mdb.GetCollection(ctx, HistoryDbName, HistoryColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var history NegotiationHistory
	err = col.FindOne(ctx, bson.M{"proposal_id": proposalID}).Decode(&history)
	if err == mongo.ErrNoDocuments {
		return &NegotiationHistory{ProposalID: proposalID, Rounds: []RoundTerms{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching negotiation history: %v", err)
	}

	return &history, nil
}
