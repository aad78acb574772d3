package database

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 128},
		{Name: "name", Type: field.TypeString, Size: 255},
		{Name: "created_at", Type: field.TypeTime},
	}
	// UsersTable holds the schema information for the "users" table.
	UsersTable = &schema.Table{
		Name:       "users",
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
	}

	// UserProgressColumns holds the columns for the "user_progress" table.
	UserProgressColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString, Size: 128},
		{Name: "version", Type: field.TypeInt64},
		{Name: "entries", Type: field.TypeJSON},
		{Name: "history", Type: field.TypeJSON},
		{Name: "mastered", Type: field.TypeJSON},
		{Name: "needs_review", Type: field.TypeJSON},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// UserProgressTable holds the schema information for the "user_progress" table.
	UserProgressTable = &schema.Table{
		Name:       "user_progress",
		Columns:    UserProgressColumns,
		PrimaryKey: []*schema.Column{UserProgressColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "user_progress_users_progress",
				Columns:    []*schema.Column{UserProgressColumns[0]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// VocabularyColumns holds the columns for the "vocabulary" table.
	VocabularyColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 128},
		{Name: "position", Type: field.TypeInt64},
		{Name: "term", Type: field.TypeString, Size: 512},
		{Name: "translation", Type: field.TypeString, Size: 512},
		{Name: "group_name", Type: field.TypeString, Size: 128, Default: ""},
		{Name: "examples", Type: field.TypeJSON, Nullable: true},
		{Name: "media", Type: field.TypeString, Size: 1024, Default: ""},
	}
	// VocabularyTable holds the schema information for the "vocabulary" table.
	VocabularyTable = &schema.Table{
		Name:       "vocabulary",
		Columns:    VocabularyColumns,
		PrimaryKey: []*schema.Column{VocabularyColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "vocabulary_position",
				Unique:  true,
				Columns: []*schema.Column{VocabularyColumns[1]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		UsersTable,
		UserProgressTable,
		VocabularyTable,
	}
)

func init() {
	UserProgressTable.ForeignKeys[0].RefTable = UsersTable
}
