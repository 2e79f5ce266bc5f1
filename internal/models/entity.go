package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EntityType classifies the kind of entity.
type EntityType string

const (
	EntityTypePerson       EntityType = "person"
	EntityTypeOrganization EntityType = "organization"
	EntityTypeEvent        EntityType = "event"
	EntityTypeLocation     EntityType = "location"
	EntityTypeSubject      EntityType = "subject"
)

// ValidEntityTypes is the set of all valid entity types.
var ValidEntityTypes = []EntityType{
	EntityTypePerson,
	EntityTypeOrganization,
	EntityTypeEvent,
	EntityTypeLocation,
	EntityTypeSubject,
}

// IsValid returns true if the entity type is recognized.
func (et EntityType) IsValid() bool {
	for i := range ValidEntityTypes {
		if et == ValidEntityTypes[i] {
			return true
		}
	}
	return false
}

// Entity is a named real-world thing tracked in the knowledge base.
// The name is the natural key: upserts overwrite type, description and
// photo but never identity. The numeric ID doubles as the mirrored
// identifier on the graph side once the row exists.
type Entity struct {
	bun.BaseModel `bun:"table:entities,alias:e"`

	ID          int64      `bun:"id,pk,autoincrement" json:"id"`
	Name        string     `bun:"name,notnull,unique" json:"name"`
	EntityType  EntityType `bun:"entity_type,notnull" json:"entity_type"`
	Description string     `bun:"description" json:"description,omitempty"`
	PhotoURL    string     `bun:"photo_url" json:"photo_url,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// RelationType is the label on a directed relationship. Labels are the
// Chinese predicates used in the source biographies.
type RelationType string

const (
	RelationBelongsTo      RelationType = "属于"
	RelationOwns           RelationType = "拥有"
	RelationResearches     RelationType = "研究"
	RelationTeaches        RelationType = "主讲"
	RelationGraduatedFrom  RelationType = "毕业于"
	RelationAwarded        RelationType = "获得"
	RelationResponsibleFor RelationType = "负责"
	RelationRelatedTo      RelationType = "相关于"
)

// ValidRelationTypes is the closed set of relationship labels.
var ValidRelationTypes = []RelationType{
	RelationBelongsTo,
	RelationOwns,
	RelationResearches,
	RelationTeaches,
	RelationGraduatedFrom,
	RelationAwarded,
	RelationResponsibleFor,
	RelationRelatedTo,
}

// IsValid returns true if the relation type is recognized.
func (rt RelationType) IsValid() bool {
	for i := range ValidRelationTypes {
		if rt == ValidRelationTypes[i] {
			return true
		}
	}
	return false
}

// Relationship is a directed, labeled edge between two entities.
// At most one row exists per (source, target) ordered pair: a newly
// observed label for the same pair replaces the stored one.
type Relationship struct {
	bun.BaseModel `bun:"table:relationships,alias:r"`

	ID               int64        `bun:"id,pk,autoincrement" json:"id"`
	SourceID         int64        `bun:"source_id,notnull" json:"source_id"`
	TargetID         int64        `bun:"target_id,notnull" json:"target_id"`
	RelationshipType RelationType `bun:"relationship_type,notnull" json:"relationship_type"`
	Description      string       `bun:"description" json:"description,omitempty"`
	Confidence       float64      `bun:"confidence,notnull,default:1.0" json:"confidence"`

	Source *Entity `bun:"rel:belongs-to,join:source_id=id" json:"source,omitempty"`
	Target *Entity `bun:"rel:belongs-to,join:target_id=id" json:"target,omitempty"`
}

// Triple is an ephemeral (subject, relation, object) fact extracted from
// one biography. Triples are consumed by the upserter and never persisted
// as their own rows.
type Triple struct {
	Subject  string       `json:"subject"`
	Relation RelationType `json:"relation"`
	Object   string       `json:"object"`
}

// Category names one slot of the extraction taxonomy. Values are the
// Chinese category labels used in the LLM prompt and by the rule engine.
type Category string

const (
	CategoryPersonName   Category = "教师姓名"
	CategoryDepartment   Category = "院系"
	CategoryTitle        Category = "职称"
	CategoryResearchArea Category = "研究方向"
	CategoryCourse       Category = "课程名称"
	CategoryAlmaMater    Category = "毕业院校"
	CategoryHonor        Category = "荣誉称号"
	CategoryDuty         Category = "工作职责"
)

// Categories lists the taxonomy in prompt order.
var Categories = []Category{
	CategoryPersonName,
	CategoryDepartment,
	CategoryTitle,
	CategoryResearchArea,
	CategoryCourse,
	CategoryAlmaMater,
	CategoryHonor,
	CategoryDuty,
}

// RelationMapping fixes which extraction category feeds each relation.
// Triple synthesis walks this mapping in RelationOrder.
var RelationMapping = map[RelationType]Category{
	RelationBelongsTo:      CategoryDepartment,
	RelationOwns:           CategoryTitle,
	RelationResearches:     CategoryResearchArea,
	RelationTeaches:        CategoryCourse,
	RelationGraduatedFrom:  CategoryAlmaMater,
	RelationAwarded:        CategoryHonor,
	RelationResponsibleFor: CategoryDuty,
}

// RelationOrder keeps triple synthesis deterministic; map iteration order
// would shuffle output between runs.
var RelationOrder = []RelationType{
	RelationBelongsTo,
	RelationOwns,
	RelationResearches,
	RelationTeaches,
	RelationGraduatedFrom,
	RelationAwarded,
	RelationResponsibleFor,
}
