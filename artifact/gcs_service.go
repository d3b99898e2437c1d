// Copyright 2025 The Combo-Banana Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"cloud.google.com/go/auth/credentials"
	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/genai"
)

// GCSService is a [Service] implementation backed by a Google Cloud Storage
// bucket, for deployments that want produced images to outlive the process.
type GCSService struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

var _ Service = (*GCSService)(nil)

// NewGCSService creates a new [GCSService] writing into the given bucket.
func NewGCSService(ctx context.Context, bucketName string) (*GCSService, error) {
	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes: []string{
			storage.ScopeFullControl,
			storage.ScopeReadWrite,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get credentials for storage: %w", err)
	}

	client, err := storage.NewGRPCClient(ctx, option.WithAuthCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &GCSService{
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

// blobName constructs the object name for one artifact version.
func (a *GCSService) blobName(sessionID, name string, version int) string {
	return fmt.Sprintf("sessions/%s/%s/%d", sessionID, name, version)
}

// Save implements [Service].
func (a *GCSService) Save(ctx context.Context, sessionID, name string, artifact *genai.Blob) (int, error) {
	if artifact == nil || len(artifact.Data) == 0 {
		return 0, fmt.Errorf("artifact %s must not be empty", name)
	}

	versions, err := a.listVersions(ctx, sessionID, name)
	if err != nil {
		return 0, err
	}
	version := 0
	if len(versions) > 0 {
		version = versions[len(versions)-1] + 1
	}

	blob := a.bucket.Object(a.blobName(sessionID, name, version))
	w := blob.NewWriter(ctx)
	w.ContentType = artifact.MIMEType
	if _, err := io.Copy(w, bytes.NewReader(artifact.Data)); err != nil {
		w.Close()
		return 0, fmt.Errorf("write artifact %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("write artifact %s: %w", name, err)
	}

	return version, nil
}

// Load implements [Service].
func (a *GCSService) Load(ctx context.Context, sessionID, name string, version int) (*genai.Blob, error) {
	if version < 0 {
		versions, err := a.listVersions(ctx, sessionID, name)
		if err != nil {
			return nil, err
		}
		if len(versions) == 0 {
			return nil, fmt.Errorf("artifact %s: %w", name, ErrArtifactNotFound)
		}
		version = versions[len(versions)-1]
	}

	blob := a.bucket.Object(a.blobName(sessionID, name, version))

	r, err := blob.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("artifact %s version %d: %w", name, version, ErrArtifactNotFound)
		}
		return nil, fmt.Errorf("read artifact %s: %w", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", name, err)
	}

	return &genai.Blob{
		MIMEType: r.Attrs.ContentType,
		Data:     data,
	}, nil
}

// List implements [Service].
func (a *GCSService) List(ctx context.Context, sessionID string) ([]string, error) {
	prefix := fmt.Sprintf("sessions/%s/", sessionID)
	it := a.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	seen := make(map[string]struct{})
	for {
		attrs, err := it.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("list artifacts: %w", err)
		}

		// sessions/<session>/<name>/<version>
		if parts := strings.Split(attrs.Name, "/"); len(parts) == 4 {
			seen[parts[2]] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)

	return names, nil
}

// Delete implements [Service].
func (a *GCSService) Delete(ctx context.Context, sessionID, name string) error {
	versions, err := a.listVersions(ctx, sessionID, name)
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, version := range versions {
		blob := a.bucket.Object(a.blobName(sessionID, name, version))
		eg.Go(func() error {
			if err := blob.Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
				return err
			}
			return nil
		})
	}

	return eg.Wait()
}

// DeleteSession implements [Service].
func (a *GCSService) DeleteSession(ctx context.Context, sessionID string) error {
	names, err := a.List(ctx, sessionID)
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		eg.Go(func() error {
			return a.Delete(ctx, sessionID, name)
		})
	}

	return eg.Wait()
}

// listVersions returns the stored versions of an artifact in ascending
// order. Object listings come back lexically, so versions are parsed and
// sorted numerically.
func (a *GCSService) listVersions(ctx context.Context, sessionID, name string) ([]int, error) {
	prefix := fmt.Sprintf("sessions/%s/%s/", sessionID, name)
	it := a.bucket.Objects(ctx, &storage.Query{Prefix: prefix})

	versions := []int{}
	for {
		attrs, err := it.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("list artifact versions: %w", err)
		}

		idx := strings.LastIndex(attrs.Name, "/")
		version, err := strconv.Atoi(attrs.Name[idx+1:])
		if err != nil {
			return nil, fmt.Errorf("parse artifact version %q: %w", attrs.Name, err)
		}
		versions = append(versions, version)
	}
	slices.Sort(versions)

	return versions, nil
}

// Close implements [Service].
func (a *GCSService) Close() error {
	return a.client.Close()
}
