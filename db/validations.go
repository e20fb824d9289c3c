package db

import (
	"github.com/bloodline/backend/internal"
	"go.mongodb.org/mongo-driver/bson"
)

var collectionsValidators = map[string]bson.M{
	"users":  usersCollectionValidator,
	"donors": donorsCollectionValidator,
}

var usersCollectionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "email", "password", "role"},
		"properties": bson.M{
			"id": bson.M{
				"bsonType":    "int",
				"description": "must be an integer and is required",
				"minimum":     1,
			},
			"email": bson.M{
				"bsonType":    "string",
				"description": "must be an email and is required",
				"pattern":     internal.EmailRegexTemplate,
			},
			"password": bson.M{
				"bsonType":    "string",
				"description": "must be a string and is required",
				"minLength":   8,
			},
			"role": bson.M{
				"bsonType":    "string",
				"description": "must be a valid staff role",
				"enum":        []string{string(AdminRole), string(OfficerRole)},
			},
		},
	},
}

var donorsCollectionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType":    "string",
				"description": "must be an email and is required",
				"pattern":     internal.EmailRegexTemplate,
			},
			"bloodGroup": bson.M{
				"bsonType":    "string",
				"description": "must be a known blood group or empty",
				"enum":        append([]string{""}, BloodGroups...),
			},
		},
	},
}
