package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/golang/snappy"
)

// S3Store persists the edge risk snapshot to a single S3 object, for
// deployments running more than one routing instance behind a load
// balancer that should all warm-start from the same last-known hazard
// picture. Uses the same on-wire framing as LocalStore.
type S3Store struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Store builds a store against an already-configured S3 client (see
// config.LoadDefaultConfig for credential/region resolution).
func NewS3Store(client *s3.Client, bucket, key string) *S3Store {
	if key == "" {
		key = snapshotFileName
	}
	return &S3Store{client: client, bucket: bucket, key: key}
}

// Save uploads the framed snapshot, overwriting any previous object.
func (s *S3Store) Save(state State) error {
	raw := encodeEdges(state.Edges)
	compressed := snappy.Encode(nil, raw)
	checksum := crc32.ChecksumIEEE(compressed)

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, state.TakenAt.Unix()); err != nil {
		return err
	}
	if err := binary.Write(&buf, binary.BigEndian, uint32(len(state.Edges))); err != nil {
		return err
	}
	if err := binary.Write(&buf, binary.BigEndian, uint32(len(compressed))); err != nil {
		return err
	}
	if _, err := buf.Write(compressed); err != nil {
		return err
	}
	if err := binary.Write(&buf, binary.BigEndian, checksum); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(buf.Bytes()),
		StorageClass: types.StorageClassStandard,
	})
	if err != nil {
		return fmt.Errorf("put snapshot object: %w", err)
	}
	return nil
}

// Load downloads and unframes the snapshot, or (nil, nil) if the object
// does not exist.
func (s *S3Store) Load() (*State, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot object: %w", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(body)

	var takenAtUnix int64
	if err := binary.Read(r, binary.BigEndian, &takenAtUnix); err != nil {
		return nil, err
	}
	var edgeCount uint32
	if err := binary.Read(r, binary.BigEndian, &edgeCount); err != nil {
		return nil, err
	}
	var dataLen uint32
	if err := binary.Read(r, binary.BigEndian, &dataLen); err != nil {
		return nil, err
	}
	compressed := make([]byte, dataLen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, err
	}
	var checksum uint32
	if err := binary.Read(r, binary.BigEndian, &checksum); err != nil {
		return nil, err
	}
	if crc32.ChecksumIEEE(compressed) != checksum {
		return nil, fmt.Errorf("snapshot checksum mismatch")
	}

	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	edges, err := decodeEdges(raw)
	if err != nil {
		return nil, err
	}

	return &State{TakenAt: time.Unix(takenAtUnix, 0), Edges: edges}, nil
}
