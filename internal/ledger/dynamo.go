package ledger

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/stationhop/backend-go/internal/models"
)

const counterStationID = "#counter"

// Dynamo is the DynamoDB-backed visit ledger. One table keyed by
// (activityId, stationId#seq); each activity additionally owns a counter item
// whose atomic ADD hands out sequence numbers, which is what serializes
// concurrent appends per activity without blocking other activities.
type Dynamo struct {
	client    DynamoDBClient
	tableName string
}

func NewDynamo(client DynamoDBClient, tableName string) *Dynamo {
	if tableName == "" {
		tableName = "visit-ledger"
	}
	return &Dynamo{
		client:    client,
		tableName: tableName,
	}
}

// nextSequence atomically increments and fetches the activity's counter.
func (d *Dynamo) nextSequence(ctx context.Context, activityID string) (int, error) {
	result, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"activityId": &types.AttributeValueMemberS{Value: activityID},
			"sortKey":    &types.AttributeValueMemberS{Value: counterStationID},
		},
		UpdateExpression: aws.String("ADD #seq :one"),
		ExpressionAttributeNames: map[string]string{
			"#seq": "seq",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("incrementing sequence counter: %w", err)
	}

	attr, ok := result.Attributes["seq"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("sequence counter came back with no numeric seq attribute")
	}
	seq, err := strconv.Atoi(attr.Value)
	if err != nil {
		return 0, fmt.Errorf("parsing sequence counter: %w", err)
	}
	return seq, nil
}

func (d *Dynamo) Append(ctx context.Context, entry AppendEntry) (*models.CheckInRecord, error) {
	if entry.ActivityID == "" {
		return nil, fmt.Errorf("missing activity id")
	}

	seq, err := d.nextSequence(ctx, entry.ActivityID)
	if err != nil {
		return nil, err
	}

	record := models.CheckInRecord{
		ID:                     uuid.New().String(),
		ActivityID:             entry.ActivityID,
		StationID:              entry.StationID,
		SequenceNumber:         seq,
		Status:                 entry.Status,
		VerificationMethod:     entry.VerificationMethod,
		GeofenceDistanceMeters: entry.GeofenceDistanceMeters,
		CapturedAt:             entry.CapturedAt,
		VisitedAt:              time.Now().UTC(),
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("invalid check-in record: %w", err)
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, fmt.Errorf("marshaling check-in record: %w", err)
	}
	item["sortKey"] = &types.AttributeValueMemberS{
		Value: fmt.Sprintf("%s#%06d", record.StationID, record.SequenceNumber),
	}

	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	}); err != nil {
		return nil, fmt.Errorf("putting check-in record: %w", err)
	}

	log.Debug().
		Str("activity_id", record.ActivityID).
		Str("station_id", record.StationID).
		Int("sequence_number", record.SequenceNumber).
		Str("status", string(record.Status)).
		Msg("Appended check-in record")

	return &record, nil
}

func (d *Dynamo) ListByActivity(ctx context.Context, activityID string) ([]models.CheckInRecord, error) {
	result, err := d.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		KeyConditionExpression: aws.String("activityId = :activityId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":activityId": &types.AttributeValueMemberS{Value: activityID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying check-in records: %w", err)
	}

	records := make([]models.CheckInRecord, 0, len(result.Items))
	for _, item := range result.Items {
		if key, ok := item["sortKey"].(*types.AttributeValueMemberS); ok && key.Value == counterStationID {
			continue
		}
		var record models.CheckInRecord
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, fmt.Errorf("unmarshaling check-in record: %w", err)
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].SequenceNumber < records[j].SequenceNumber
	})
	return records, nil
}
