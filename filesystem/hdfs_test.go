package filesystem

import (
	"io/ioutil"
	"os"
	"reflect"
	"testing"
)

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
	}{
		{"/a", []string{"a"}},
		{"/user/hdfs/etl*/part.*", []string{"user", "hdfs", "etl*", "part.*"}},
	}
	for _, tt := range tests {
		if got := splitPattern(tt.pattern); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitPattern(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}

func TestHdfsClient(t *testing.T) {
	addr := os.Getenv("namenode_addr")
	if addr == "" {
		t.Skip("HDFS config not specified.")
	}
	client, err := NewHdfsClient(addr, os.Getenv("hdfs_user"))
	if err != nil {
		t.Fatalf("NewHdfsClient(%s) failed: %v", addr, err)
	}
	name := "/tmp/harpload/testing.csv"
	writeCloser, err := client.OpenWriteCloser(name)
	if err != nil {
		t.Fatalf("OpenWriteCloser failed: %v", err)
	}
	if _, err = writeCloser.Write([]byte("1,2,3\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := writeCloser.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	defer client.Remove(name)

	rd, err := client.OpenReadCloser(name)
	if err != nil {
		t.Fatalf("OpenReadCloser failed: %v", err)
	}
	b, _ := ioutil.ReadAll(rd)
	rd.Close()
	if string(b) != "1,2,3\n" {
		t.Fatalf("Read result isn't correct. Get = %q", b)
	}

	names, err := client.Glob("/tmp/harpload/*.csv")
	if err != nil {
		t.Fatalf("Glob failed: %v", err)
	}
	if len(names) == 0 {
		t.Fatalf("Glob didn't find %s", name)
	}
}
