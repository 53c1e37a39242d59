package config

// DefaultColumnNames maps the column names produced by the lineage export
// and the flow builder to the names stored in the database.
var DefaultColumnNames = map[string]string{
	"Root_ID":                 "ROOT_ID",
	"Step_Node":               "STEP_NODE",
	"Flow":                    "FLOW",
	"Node":                    "NODE",
	"Flow_implement_raw":      "FLOW_RAW",
	"Raw_Node":                "NODE_OBJECT",
	"table_name_extract":      "TABLE_NAME_NODE_OBJECT",
	"ValueObjectType":         "VALUE_OBJECT_TYPE",
	"database_type":           "SOURCE_DATABASE_TYPE",
	"database_name":           "SOURCE_DATABASE_NAME",
	"schema":                  "SCHEMA_OBJECT",
	"source_table_name":       "SOURCE_TABLE_NAME",
	"column_name_relations":   "COLUMN_NAME_RELATIONS",
	"table_name_relations":    "TABLE_NAME_RELATIONS",
	"unpivoted_column":        "NODE_RELATIONS",
	"database_type_relations": "DATABASE_RELATIONS_NODE_TYPE",
	"database_name_relations": "DATABASE_RELATIONS_NODE_NAME",
	"schema_relations":        "SCHEMA_RELATIONS_NODE",

	"Table_name":         "TABLE_NAME_CSV",
	"Type":               "TYPE",
	"column_name":        "COLUMN_NAME_OBJECT",
	"SourcePath":         "SOURCE_PATH",
	"TargetPath":         "TARGET_PATH",
	"SourceColumnName":   "SOURCE_COLUMN_NAME",
	"SourceColumnType":   "SOURCE_COLUMN_TYPE",
	"TargetColumnName":   "TARGET_COLUMN_NAME",
	"TargetColumnType":   "TARGET_COLUMN_TYPE",
	"SourceObjectName":   "SOURCE_OBJECT_NAME",
	"SourceObjectType":   "SOURCE_OBJECT_TYPE",
	"TargetObjectName":   "TARGET_OBJECT_NAME",
	"TargetObjectType":   "TARGET_OBJECT_TYPE",
	"SourceGroupName":    "SOURCE_GROUP_NAME",
	"SourceGroupType":    "SOURCE_GROUP_TYPE",
	"TargetGroupName":    "TARGET_GROUP_NAME",
	"TargetGroupType":    "TARGET_GROUP_TYPE",
	"SourceResourceName": "SOURCE_RESOURCE_NAME",
	"SourceResourceType": "SOURCE_RESOURCE_TYPE",
	"TargetResourceName": "TARGET_RESOURCE_NAME",
	"TargetResourceType": "TARGET_RESOURCE_TYPE",
	"RevisionState":      "REVISION_STATE",
	"UpdateTime":         "UPDATE_TIME",
}
