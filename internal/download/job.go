// Package download acquires transcode output: it persists manifests,
// fetches every segment through a bounded retrying pool, and streams
// progress to the notification bus.
package download

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/binge/internal/events"
	"github.com/vmunix/binge/internal/hls"
	"github.com/vmunix/binge/internal/provider"
	"github.com/vmunix/binge/internal/storage"
)

// segmentConcurrency is the fetch pool width per job.
const segmentConcurrency = 4

// segment pairs a remote URL with its blob key.
type segment struct {
	id     int
	remote string
	key    string
}

// outcome is one attempted segment, success or exhausted failure.
type outcome struct {
	id  int
	err error
}

// Job downloads one content item's transcode output into blob storage.
type Job struct {
	DownloadID   string
	ConnectionID int64
	ContentID    string
	Manifest     *provider.Manifest

	fetcher Fetcher
	blobs   storage.Blob
	bus     *events.Bus
	store   *Store
	log     *slog.Logger
}

// NewJob creates a download job for a manifest already fetched from the
// provider.
func NewJob(d *Download, manifest *provider.Manifest, fetcher Fetcher,
	blobs storage.Blob, bus *events.Bus, store *Store, log *slog.Logger) *Job {

	if log == nil {
		log = slog.Default()
	}
	return &Job{
		DownloadID:   d.ID,
		ConnectionID: d.ConnectionID,
		ContentID:    d.ContentID,
		Manifest:     manifest,
		fetcher:      fetcher,
		blobs:        blobs,
		bus:          bus,
		store:        store,
		log:          log.With("component", "download", "download_id", d.ID),
	}
}

// Run persists the manifests, fetches all segments, and reports the
// terminal status. Manifest persistence errors abort the job before any
// segment fetch; per-segment failures do not.
func (j *Job) Run(ctx context.Context) error {
	segments, err := j.persistManifests(ctx)
	if err != nil {
		j.fail(err.Error())
		return err
	}

	failed := j.fetchAll(ctx, segments)
	if err := ctx.Err(); err != nil {
		j.fail("cancelled")
		return err
	}

	if len(segments) > 0 && failed == len(segments) {
		j.fail("all segments failed")
	} else if err := j.store.SetStatus(j.DownloadID, StatusFinished, nil); err != nil {
		j.log.Error("status update failed", "error", err)
	}

	j.log.Info("job finished", "segments", len(segments), "failed", failed)
	return nil
}

// persistManifests writes the master playlist, then each variant's media
// playlist with segment URIs rewritten to "<variant>/<filename>", and
// returns the (remote, blob key) fetch list.
func (j *Job) persistManifests(ctx context.Context) ([]segment, error) {
	master := j.Manifest.Master.Encode().Bytes()
	if err := j.blobs.Upload(ctx, j.key("main.m3u8"), master); err != nil {
		return nil, fmt.Errorf("persist master playlist: %w", err)
	}

	var segments []segment
	for _, variant := range j.Manifest.Master.Variants {
		name := hls.VariantName(variant)
		media, ok := j.Manifest.Media[name]
		if !ok {
			return nil, fmt.Errorf("%w: no media playlist for variant %s", provider.ErrManifestIncomplete, name)
		}
		for _, seg := range hls.Segments(media) {
			remote := seg.URI
			local := name + "/" + hls.SegmentFileName(remote)
			seg.URI = local
			segments = append(segments, segment{
				id:     len(segments),
				remote: remote,
				key:    j.key(local),
			})
		}
		if err := j.blobs.Upload(ctx, j.key(name+".m3u8"), media.Encode().Bytes()); err != nil {
			return nil, fmt.Errorf("persist media playlist %s: %w", name, err)
		}
	}
	return segments, nil
}

// fetchAll fans segment fetches out over the bounded pool and drains
// outcomes through a single consumer that owns the ETA estimator and
// the bus. Returns the failed-segment count.
func (j *Job) fetchAll(ctx context.Context, segments []segment) int {
	results := make(chan outcome)

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(segmentConcurrency)
	go func() {
		for _, seg := range segments {
			seg := seg
			grp.Go(func() error {
				results <- outcome{id: seg.id, err: j.fetchSegment(grpCtx, seg)}
				return nil
			})
		}
		_ = grp.Wait()
		close(results)
	}()

	eta := newETAEstimator(len(segments))
	done := 0
	failed := 0
	for result := range results {
		remaining := eta.Complete()
		if result.err != nil {
			failed++
			j.log.Warn("segment failed", "segment_id", result.id, "error", result.err)
			j.publish(Progress{Failed: &SegmentFailed{
				SegmentID: result.id,
				Error:     result.err.Error(),
			}})
		} else {
			done++
		}
		j.publish(Progress{Report: &SegmentProgressReport{
			Done:       done,
			Total:      len(segments),
			ETA:        formatETA(remaining),
			ETASeconds: remaining.Seconds(),
		}})
	}

	j.publish(Progress{Finished: &Finished{Elapsed: eta.Elapsed().Seconds()}})
	return failed
}

func (j *Job) fetchSegment(ctx context.Context, seg segment) error {
	data, err := j.fetcher.Fetch(ctx, seg.remote)
	if err != nil {
		return err
	}
	return j.blobs.Upload(ctx, seg.key, data)
}

func (j *Job) publish(p Progress) {
	payload, err := json.Marshal(p)
	if err != nil {
		j.log.Error("encode progress", "error", err)
		return
	}
	j.bus.Publish(events.Notification{
		ConnectionID: j.ConnectionID,
		ContentID:    j.ContentID,
		DownloadID:   j.DownloadID,
		Payload:      payload,
	})
}

func (j *Job) fail(info string) {
	if err := j.store.SetStatus(j.DownloadID, StatusFailed, &info); err != nil {
		j.log.Error("status update failed", "error", err)
	}
}

// key maps a job-relative path into the blob layout.
func (j *Job) key(rel string) string {
	return fmt.Sprintf("single/%d/%s/%s", j.ConnectionID, j.ContentID, rel)
}
