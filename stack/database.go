package stack

import (
	"github.com/wirestack/wirestack/resources/dynamodb"
)

// Tables holds the application's DynamoDB tables.
type Tables struct {
	// Users stores user records for the management API.
	Users TableHandle
	// ProcessedData stores the results of upload processing.
	ProcessedData TableHandle
	// Notifications stores delivered notification records.
	Notifications TableHandle
}

// addTables registers the three application tables. All share the same
// shape: a single string partition key "id", on-demand billing, encryption
// at rest, continuous backups, and removal on stack teardown.
func (s *Stack) addTables() Tables {
	return Tables{
		Users:         s.addTable("UsersTable", "users"),
		ProcessedData: s.addTable("ProcessedDataTable", "processed-data"),
		Notifications: s.addTable("NotificationsTable", "notifications"),
	}
}

func (s *Stack) addTable(logicalID, suffix string) TableHandle {
	handle := s.builder.Add(logicalID, dynamodb.Table{
		TableName: s.resourceName(suffix),
		AttributeDefinitions: []dynamodb.AttributeDefinition{
			{AttributeName: "id", AttributeType: "S"},
		},
		KeySchema: []dynamodb.KeySchemaElement{
			{AttributeName: "id", KeyType: "HASH"},
		},
		BillingMode: "PAY_PER_REQUEST",
		SSESpecification: &dynamodb.SSESpecification{
			SSEEnabled: true,
		},
		PointInTimeRecoverySpecification: &dynamodb.PointInTimeRecoverySpecification{
			PointInTimeRecoveryEnabled: true,
		},
	})
	s.builder.SetDeletionPolicy(logicalID, "Delete")
	return TableHandle{handle}
}
