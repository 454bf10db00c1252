package filesystem

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"golang.org/x/net/context"
)

type AzureClient struct {
	client *azblob.Client
}

// AzureFile buffers writes and uploads the whole blob on Close.
type AzureFile struct {
	client        *azblob.Client
	containerName string
	blobName      string
	buf           bytes.Buffer
	closed        bool
}

// convertToAzurePath splits a name following the pattern "ContainerName/BlobName".
// The blob name may contain further '/' separators.
func convertToAzurePath(name string) (string, string, error) {
	afterSplit := strings.SplitN(name, "/", 2)
	if len(afterSplit) != 2 || afterSplit[0] == "" || afterSplit[1] == "" {
		return "", "", fmt.Errorf("AzureClient : Need Correct Path Name %q", name)
	}
	return afterSplit[0], afterSplit[1], nil
}

// Exists only checks the BlobName.
// User should provide the corresponding ContainerName.
func (c *AzureClient) Exists(name string) (bool, error) {
	containerName, blobName, err := convertToAzurePath(name)
	if err != nil {
		return false, err
	}
	blob := c.client.ServiceClient().NewContainerClient(containerName).NewBlobClient(blobName)
	_, err = blob.GetProperties(context.Background(), nil)
	if err == nil {
		return true, nil
	}
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound, bloberror.ResourceNotFound) {
		return false, nil
	}
	return false, err
}

// Azure prevents renaming blobs, so the source blob is copied to the
// new name and deleted afterwards.
func (c *AzureClient) Rename(oldpath, newpath string) error {
	if oldpath == newpath {
		return nil
	}
	exist, err := c.Exists(oldpath)
	if err != nil {
		return err
	}
	if !exist {
		return fmt.Errorf("AzureClient : oldpath %s does not exist", oldpath)
	}
	srcContainerName, srcBlobName, err := convertToAzurePath(oldpath)
	if err != nil {
		return err
	}
	rd, err := c.OpenReadCloser(oldpath)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(rd)
	rd.Close()
	if err != nil {
		return err
	}
	wr, err := c.OpenWriteCloser(newpath)
	if err != nil {
		return err
	}
	if _, err := wr.Write(data); err != nil {
		return err
	}
	if err := wr.Close(); err != nil {
		return err
	}
	_, err = c.client.DeleteBlob(context.Background(), srcContainerName, srcBlobName, nil)
	return err
}

func (c *AzureClient) OpenReadCloser(name string) (io.ReadCloser, error) {
	containerName, blobName, err := convertToAzurePath(name)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.DownloadStream(context.Background(), containerName, blobName, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// OpenWriteCloser creates the container if it doesn't exist.
func (c *AzureClient) OpenWriteCloser(name string) (io.WriteCloser, error) {
	containerName, blobName, err := convertToAzurePath(name)
	if err != nil {
		return nil, err
	}
	_, err = c.client.CreateContainer(context.Background(), containerName, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, err
	}
	return &AzureFile{
		client:        c.client,
		containerName: containerName,
		blobName:      blobName,
	}, nil
}

func (c *AzureClient) Remove(name string) error {
	containerName, blobName, err := convertToAzurePath(name)
	if err != nil {
		return err
	}
	_, err = c.client.DeleteBlob(context.Background(), containerName, blobName, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return err
	}
	return nil
}

func (f *AzureFile) Write(b []byte) (int, error) {
	if f.closed {
		return 0, fmt.Errorf("AzureFile : write to closed blob %s/%s", f.containerName, f.blobName)
	}
	return f.buf.Write(b)
}

func (f *AzureFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	_, err := f.client.UploadBuffer(context.Background(), f.containerName, f.blobName, f.buf.Bytes(), nil)
	return err
}

// Glob syntax : container*/prefix/*.csv
// Both parts follow path.Match syntax.
func (c *AzureClient) Glob(pattern string) (matches []string, err error) {
	cntPattern, blobPattern, err := convertToAzurePath(pattern)
	if err != nil {
		return nil, fmt.Errorf("Glob pattern should follow the Syntax: %v", err)
	}
	ctx := context.Background()
	var containers []string
	if hasMeta(cntPattern) {
		pager := c.client.NewListContainersPager(nil)
		for pager.More() {
			resp, err := pager.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			for _, cnt := range resp.ContainerItems {
				if cnt.Name == nil {
					continue
				}
				if ok, _ := path.Match(cntPattern, *cnt.Name); ok {
					containers = append(containers, *cnt.Name)
				}
			}
		}
	} else {
		containers = append(containers, cntPattern)
	}

	for _, cnt := range containers {
		pager := c.client.NewListBlobsFlatPager(cnt, nil)
		for pager.More() {
			resp, err := pager.NextPage(ctx)
			if err != nil {
				if bloberror.HasCode(err, bloberror.ContainerNotFound) {
					break
				}
				return nil, err
			}
			for _, v := range resp.Segment.BlobItems {
				if v.Name == nil {
					continue
				}
				if ok, _ := path.Match(blobPattern, *v.Name); ok {
					matches = append(matches, cnt+"/"+*v.Name)
				}
			}
		}
	}
	sort.Strings(matches)
	return matches, nil
}

// NewAzureClient constructs a blob client authorized with the account's
// shared key. blobServiceBaseUrl is the endpoint suffix, for example
// "core.windows.net" or "core.chinacloudapi.cn".
func NewAzureClient(accountName, accountKey, blobServiceBaseUrl string, useHttps bool) (*AzureClient, error) {
	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}
	scheme := "http"
	if useHttps {
		scheme = "https"
	}
	serviceURL := fmt.Sprintf("%s://%s.blob.%s/", scheme, accountName, blobServiceBaseUrl)
	cli, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, err
	}
	return &AzureClient{client: cli}, nil
}
