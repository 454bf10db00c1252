// Package shardpb holds the wire form of loaded shards, see shard.proto.
package shardpb

import (
	"github.com/golang/protobuf/proto"
)

type Shard struct {
	Rows   int32     `protobuf:"varint,1,opt,name=rows,proto3" json:"rows,omitempty"`
	Cols   int32     `protobuf:"varint,2,opt,name=cols,proto3" json:"cols,omitempty"`
	Values []float64 `protobuf:"fixed64,3,rep,packed,name=values,proto3" json:"values,omitempty"`
}

func (m *Shard) Reset()         { *m = Shard{} }
func (m *Shard) String() string { return proto.CompactTextString(m) }
func (*Shard) ProtoMessage()    {}

func (m *Shard) GetRows() int32 {
	if m != nil {
		return m.Rows
	}
	return 0
}

func (m *Shard) GetCols() int32 {
	if m != nil {
		return m.Cols
	}
	return 0
}

func (m *Shard) GetValues() []float64 {
	if m != nil {
		return m.Values
	}
	return nil
}

type ShardSet struct {
	Path   string   `protobuf:"bytes,1,opt,name=path,proto3" json:"path,omitempty"`
	Cols   int32    `protobuf:"varint,2,opt,name=cols,proto3" json:"cols,omitempty"`
	Shards []*Shard `protobuf:"bytes,3,rep,name=shards,proto3" json:"shards,omitempty"`
}

func (m *ShardSet) Reset()         { *m = ShardSet{} }
func (m *ShardSet) String() string { return proto.CompactTextString(m) }
func (*ShardSet) ProtoMessage()    {}

func (m *ShardSet) GetPath() string {
	if m != nil {
		return m.Path
	}
	return ""
}

func (m *ShardSet) GetCols() int32 {
	if m != nil {
		return m.Cols
	}
	return 0
}

func (m *ShardSet) GetShards() []*Shard {
	if m != nil {
		return m.Shards
	}
	return nil
}

type FetchRequest struct {
	Path string `protobuf:"bytes,1,opt,name=path,proto3" json:"path,omitempty"`
}

func (m *FetchRequest) Reset()         { *m = FetchRequest{} }
func (m *FetchRequest) String() string { return proto.CompactTextString(m) }
func (*FetchRequest) ProtoMessage()    {}

func (m *FetchRequest) GetPath() string {
	if m != nil {
		return m.Path
	}
	return ""
}

type ListRequest struct {
}

func (m *ListRequest) Reset()         { *m = ListRequest{} }
func (m *ListRequest) String() string { return proto.CompactTextString(m) }
func (*ListRequest) ProtoMessage()    {}

type ListResponse struct {
	Paths []string `protobuf:"bytes,1,rep,name=paths,proto3" json:"paths,omitempty"`
}

func (m *ListResponse) Reset()         { *m = ListResponse{} }
func (m *ListResponse) String() string { return proto.CompactTextString(m) }
func (*ListResponse) ProtoMessage()    {}

func (m *ListResponse) GetPaths() []string {
	if m != nil {
		return m.Paths
	}
	return nil
}
