package pack

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
)

// PackValidator validates a single pack
type PackValidator interface {
	Validate(ctx context.Context, pack *domain.StickerPack) error
}

// Certifier validates every pack of a manifest. Packs share no mutable
// state, so they may be validated in parallel; the reported error is always
// the one of the first failing pack in manifest order.
type Certifier struct {
	validator   PackValidator
	concurrency int
}

// NewCertifier creates a certifier. A concurrency below 2 validates sequentially.
func NewCertifier(validator PackValidator, concurrency int) *Certifier {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Certifier{
		validator:   validator,
		concurrency: concurrency,
	}
}

// Certify validates packs in place
func (c *Certifier) Certify(ctx context.Context, packs []domain.StickerPack) error {
	start := time.Now()

	var err error
	if c.concurrency == 1 || len(packs) < 2 {
		err = c.certifySequential(ctx, packs)
	} else {
		err = c.certifyParallel(ctx, packs)
	}

	if err != nil {
		log.Warn().Err(err).Int("packs", len(packs)).Msg("Manifest certification failed")
		return err
	}

	log.Info().
		Int("packs", len(packs)).
		Dur("duration", time.Since(start)).
		Msg("Manifest certified")
	return nil
}

func (c *Certifier) certifySequential(ctx context.Context, packs []domain.StickerPack) error {
	for i := range packs {
		if err := c.validator.Validate(ctx, &packs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Certifier) certifyParallel(ctx context.Context, packs []domain.StickerPack) error {
	errs := make([]error, len(packs))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i := range packs {
		i := i
		g.Go(func() error {
			errs[i] = c.validator.Validate(ctx, &packs[i])
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Service parses and certifies manifests submitted from outside the catalog
type Service struct {
	parser    *ManifestParser
	certifier *Certifier
}

// NewService creates a manifest service
func NewService(parser *ManifestParser, certifier *Certifier) *Service {
	return &Service{
		parser:    parser,
		certifier: certifier,
	}
}

// Parse performs the structural check only
func (s *Service) Parse(ctx context.Context, data []byte) ([]domain.StickerPack, error) {
	return s.parser.ParseBytes(data)
}

// Certify parses data and validates every pack it describes
func (s *Service) Certify(ctx context.Context, data []byte) ([]domain.StickerPack, error) {
	packs, err := s.parser.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	if err := s.certifier.Certify(ctx, packs); err != nil {
		return nil, err
	}
	return packs, nil
}

var _ domain.ManifestCertifier = (*Service)(nil)
