package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FileType string

const (
	TypeFolder FileType = "folder"
	TypeFile   FileType = "file"
	TypeImage  FileType = "image"
)

func (t FileType) Valid() bool {
	switch t {
	case TypeFolder, TypeFile, TypeImage:
		return true
	}
	return false
}

// RootSentinel is the external representation of the hierarchy root. The root
// is a logical anchor, not a record.
const RootSentinel = "0"

// ParentRef is a tagged reference to a file's parent: either the root anchor
// or the id of a folder record. On the wire it keeps the stored asymmetry:
// the root serializes as the literal string "0", everything else as an
// ObjectID. Internal code only sees the variant.
type ParentRef struct {
	id   primitive.ObjectID
	root bool
}

func RootRef() ParentRef {
	return ParentRef{root: true}
}

func FolderRef(id primitive.ObjectID) ParentRef {
	return ParentRef{id: id}
}

// ParseParentRef converts an external parentId value into a ParentRef. Empty
// input and the root sentinel both resolve to the root.
func ParseParentRef(raw string) (ParentRef, error) {
	if raw == "" || raw == RootSentinel {
		return RootRef(), nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return ParentRef{}, fmt.Errorf("invalid parent id %q: %w", raw, err)
	}
	return FolderRef(id), nil
}

func (p ParentRef) IsRoot() bool {
	return p.root
}

// FolderID returns the referenced folder id. Only meaningful when !IsRoot().
func (p ParentRef) FolderID() primitive.ObjectID {
	return p.id
}

// String returns the external form: "0" for root, the hex id otherwise.
func (p ParentRef) String() string {
	if p.root {
		return RootSentinel
	}
	return p.id.Hex()
}

func (p ParentRef) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if p.root {
		return bson.MarshalValue(RootSentinel)
	}
	return bson.MarshalValue(p.id)
}

func (p *ParentRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		value, ok := raw.StringValueOK()
		if !ok || value != RootSentinel {
			return fmt.Errorf("unexpected parentId string %q", value)
		}
		*p = RootRef()
		return nil
	case bsontype.ObjectID:
		id, ok := raw.ObjectIDOK()
		if !ok {
			return fmt.Errorf("malformed parentId object id")
		}
		*p = FolderRef(id)
		return nil
	default:
		return fmt.Errorf("unexpected parentId bson type %s", t)
	}
}

// File is a document in the files collection describing a folder, file or
// image. LocalPath identifies the blob in the content store and is never
// serialized to clients.
type File struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId"`
	Name      string             `bson:"name"`
	Type      FileType           `bson:"type"`
	ParentID  ParentRef          `bson:"parentId"`
	IsPublic  bool               `bson:"isPublic"`
	LocalPath string             `bson:"localPath,omitempty"`
}

// FileResponse is the external record shape.
type FileResponse struct {
	ID       string   `json:"id"`
	UserID   string   `json:"userId"`
	Name     string   `json:"name"`
	Type     FileType `json:"type"`
	IsPublic bool     `json:"isPublic"`
	ParentID string   `json:"parentId"`
}

func (f *File) ToResponse() FileResponse {
	return FileResponse{
		ID:       f.ID.Hex(),
		UserID:   f.UserID.Hex(),
		Name:     f.Name,
		Type:     f.Type,
		IsPublic: f.IsPublic,
		ParentID: f.ParentID.String(),
	}
}

// ToResponses maps a page of records to the external shape, preserving order.
func ToResponses(files []File) []FileResponse {
	out := make([]FileResponse, 0, len(files))
	for i := range files {
		out = append(out, files[i].ToResponse())
	}
	return out
}
