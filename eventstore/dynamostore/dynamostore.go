// Package dynamostore is a DynamoDB-backed eventstore.EventStore. It
// follows the journal/snapshot-table split used by DynamoDB-native
// event stores in the wild: one table holds append-only event items
// keyed by (stream_id, version), the other holds at most one snapshot
// item per stream_id. Optimistic concurrency is enforced with a
// conditional put keyed on version rather than the row-count check a
// relational backend can afford.
package dynamostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	smithy "github.com/aws/smithy-go"

	"github.com/bankledger/eventbank/bankaccount"
	"github.com/bankledger/eventbank/eventstore"
)

const (
	attrStreamID   = "stream_id"
	attrVersion    = "version"
	attrEventType  = "event_type"
	attrPayload    = "payload"
	attrOccurredAt = "occurred_at"

	attrSnapStreamID  = "stream_id"
	attrSnapVersion   = "stream_version"
	attrSnapState     = "state"
	attrSnapCreatedAt = "created_at"
)

// Store is a concrete EventStore backed by two DynamoDB tables.
type Store struct {
	client         *dynamodb.Client
	journalTable   string
	snapshotTable  string
}

// New creates a DynamoDB-backed Store. journalTable holds events,
// snapshotTable holds the single-snapshot-per-stream slot.
func New(client *dynamodb.Client, journalTable, snapshotTable string) *Store {
	return &Store{client: client, journalTable: journalTable, snapshotTable: snapshotTable}
}

// AppendEventStream implements eventstore.EventStore. Each event is
// written with its own conditional PutItem so a concurrent writer that
// already claimed a version loses with ConditionalCheckFailedException,
// translated to *eventstore.DuplicateEntryError.
func (s *Store) AppendEventStream(ctx context.Context, streamID string, expectedNextVersion uint64, events []bankaccount.Event) error {
	currentVersion := expectedNextVersion - 1

	cond := expression.AttributeNotExists(expression.Name(attrVersion))
	condExpr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("dynamostore: could not build condition expression: %w", err)
	}

	for _, e := range events {
		body, err := bankaccount.EncodeEvent(e)
		if err != nil {
			return fmt.Errorf("dynamostore: could not encode event: %w", err)
		}
		currentVersion++

		item := map[string]types.AttributeValue{
			attrStreamID:   &types.AttributeValueMemberS{Value: streamID},
			attrVersion:    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", currentVersion)},
			attrEventType:  &types.AttributeValueMemberS{Value: e.EventType()},
			attrPayload:    &types.AttributeValueMemberB{Value: body},
			attrOccurredAt: &types.AttributeValueMemberS{Value: e.OccurredAt().UTC().Format(time.RFC3339Nano)},
		}

		_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                 aws.String(s.journalTable),
			Item:                      item,
			ConditionExpression:       condExpr.Condition(),
			ExpressionAttributeNames:  condExpr.Names(),
			ExpressionAttributeValues: condExpr.Values(),
		})
		if err != nil {
			if isConditionalCheckFailed(err) {
				return &eventstore.DuplicateEntryError{StreamID: streamID, Version: currentVersion}
			}
			return fmt.Errorf("dynamostore: could not put event: %w", err)
		}
	}
	return nil
}

// EventStreamSince implements eventstore.EventStore.
func (s *Store) EventStreamSince(ctx context.Context, streamID string, fromVersion uint64) (eventstore.EventStream, error) {
	keyCond := expression.Key(attrStreamID).Equal(expression.Value(streamID)).
		And(expression.Key(attrVersion).GreaterThanEqual(expression.Value(fromVersion)))
	queryExpr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return eventstore.EventStream{}, fmt.Errorf("dynamostore: could not build query expression: %w", err)
	}

	var out []bankaccount.Event
	var last uint64
	var startKey map[string]types.AttributeValue

	for {
		resp, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.journalTable),
			KeyConditionExpression:    queryExpr.KeyCondition(),
			ExpressionAttributeNames:  queryExpr.Names(),
			ExpressionAttributeValues: queryExpr.Values(),
			ExclusiveStartKey:         startKey,
			ScanIndexForward:          aws.Bool(true),
		})
		if err != nil {
			return eventstore.EventStream{}, fmt.Errorf("dynamostore: could not query events: %w", err)
		}

		for _, item := range resp.Items {
			eventType, _ := item[attrEventType].(*types.AttributeValueMemberS)
			payload, _ := item[attrPayload].(*types.AttributeValueMemberB)
			versionAttr, _ := item[attrVersion].(*types.AttributeValueMemberN)
			if eventType == nil || payload == nil || versionAttr == nil {
				return eventstore.EventStream{}, fmt.Errorf("dynamostore: malformed journal item for stream %q", streamID)
			}

			ev, err := bankaccount.DecodeEvent(eventType.Value, payload.Value)
			if err != nil {
				return eventstore.EventStream{}, fmt.Errorf("dynamostore: could not decode event: %w", err)
			}
			out = append(out, ev)

			var version uint64
			if _, err := fmt.Sscanf(versionAttr.Value, "%d", &version); err != nil {
				return eventstore.EventStream{}, fmt.Errorf("dynamostore: malformed version attribute: %w", err)
			}
			last = version
		}

		if resp.LastEvaluatedKey == nil {
			break
		}
		startKey = resp.LastEvaluatedKey
	}

	if len(out) == 0 {
		return eventstore.EventStream{}, &eventstore.NoEventStreamError{StreamID: streamID, FromVersion: fromVersion}
	}
	return eventstore.EventStream{StreamID: streamID, Events: out, StreamVersion: last}, nil
}

// RecordSnapshot implements eventstore.EventStore.
func (s *Store) RecordSnapshot(ctx context.Context, snap eventstore.Snapshot) error {
	data, err := marshalState(snap.Data)
	if err != nil {
		return fmt.Errorf("dynamostore: could not encode snapshot: %w", err)
	}

	item := map[string]types.AttributeValue{
		attrSnapStreamID:  &types.AttributeValueMemberS{Value: snap.StreamID},
		attrSnapVersion:   &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", snap.StreamVersion)},
		attrSnapState:     &types.AttributeValueMemberB{Value: data},
		attrSnapCreatedAt: &types.AttributeValueMemberS{Value: snap.CreatedAt.UTC().Format(time.RFC3339Nano)},
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.snapshotTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamostore: could not put snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot implements eventstore.EventStore.
func (s *Store) ReadSnapshot(ctx context.Context, streamID string) (eventstore.Snapshot, bool, error) {
	resp, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.snapshotTable),
		Key: map[string]types.AttributeValue{
			attrSnapStreamID: &types.AttributeValueMemberS{Value: streamID},
		},
	})
	if err != nil {
		return eventstore.Snapshot{}, false, fmt.Errorf("dynamostore: could not get snapshot: %w", err)
	}
	if resp.Item == nil {
		return eventstore.Snapshot{}, false, nil
	}

	versionAttr, _ := resp.Item[attrSnapVersion].(*types.AttributeValueMemberN)
	stateAttr, _ := resp.Item[attrSnapState].(*types.AttributeValueMemberB)
	createdAttr, _ := resp.Item[attrSnapCreatedAt].(*types.AttributeValueMemberS)
	if versionAttr == nil || stateAttr == nil || createdAttr == nil {
		return eventstore.Snapshot{}, false, fmt.Errorf("dynamostore: malformed snapshot item for stream %q", streamID)
	}

	var version uint64
	if _, err := fmt.Sscanf(versionAttr.Value, "%d", &version); err != nil {
		return eventstore.Snapshot{}, false, fmt.Errorf("dynamostore: malformed version attribute: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdAttr.Value)
	if err != nil {
		return eventstore.Snapshot{}, false, fmt.Errorf("dynamostore: malformed created_at attribute: %w", err)
	}

	var data bankaccount.BankAccount
	if err := unmarshalState(stateAttr.Value, &data); err != nil {
		return eventstore.Snapshot{}, false, fmt.Errorf("dynamostore: could not decode snapshot: %w", err)
	}

	return eventstore.Snapshot{
		StreamID:      streamID,
		StreamVersion: version,
		Data:          data,
		CreatedAt:     createdAt,
	}, true, nil
}

func isConditionalCheckFailed(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ConditionalCheckFailedException"
	}
	return false
}

var _ eventstore.EventStore = (*Store)(nil)
