package shardpb

import (
	"io/ioutil"

	"github.com/golang/protobuf/proto"
	fs "github.com/taskgraph/harpload/filesystem"
)

func LoadShardSet(client fs.Client, path string) (*ShardSet, error) {
	set := &ShardSet{}
	reader, cErr := client.OpenReadCloser(path)
	if cErr != nil {
		return nil, cErr
	}
	defer reader.Close()

	buf, rdErr := ioutil.ReadAll(reader)
	if rdErr != nil {
		return nil, rdErr
	}
	if rdErr = fromByte(buf, set); rdErr != nil {
		return nil, rdErr
	}
	return set, nil
}

func SaveShardSet(client fs.Client, set *ShardSet, path string) error {
	buf, seErr := toByte(set)
	if seErr != nil {
		return seErr
	}
	writer, oErr := client.OpenWriteCloser(path)
	if oErr != nil {
		return oErr
	}
	if _, wErr := writer.Write(buf); wErr != nil {
		writer.Close()
		return wErr
	}
	return writer.Close()
}

func toByte(msg proto.Message) ([]byte, error) {
	return proto.Marshal(msg)
}

func fromByte(buf []byte, message proto.Message) error {
	return proto.Unmarshal(buf, message)
}
