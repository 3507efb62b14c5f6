package main

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/stationhop/backend-go/internal/api"
	appconfig "github.com/stationhop/backend-go/internal/config"
	"github.com/stationhop/backend-go/internal/match"
	"github.com/stationhop/backend-go/internal/registry"
)

var (
	pipelineCfg   *appconfig.PipelineConfig
	registryCache *registry.Cache
	resolverCache *match.ResolverCache
	catalogLoader *registry.S3Loader
	setupOnce     sync.Once
	setupErr      error
)

func init() {
	setupOnce.Do(func() {
		cfg := appconfig.LoadFromEnv()
		cfg.InitializeLogging()

		pipelineCfg = appconfig.GetPipelineConfig()
		if err := pipelineCfg.Validate(); err != nil {
			setupErr = err
			log.Error().Err(err).Msg("Invalid pipeline configuration")
			return
		}

		s3Client, err := registry.NewS3Client(context.Background())
		if err != nil {
			setupErr = err
			log.Error().Err(err).Msg("Creating S3 client")
			return
		}
		catalogLoader = registry.NewS3Loader(s3Client, cfg.CatalogBucket, cfg.CatalogKey)
		registryCache = registry.NewCache(0)
		resolverCache = match.NewResolverCache(match.ResolverConfig{
			ScoreFloor:           pipelineCfg.MatchScoreFloor,
			RelaxedScoreFloor:    pipelineCfg.RelaxedScoreFloor,
			DisambiguationMargin: pipelineCfg.DisambiguationMargin,
			MaxSuggestions:       pipelineCfg.MaxSuggestions,
			LRUSize:              pipelineCfg.ResolutionLRUSize,
		})

		log.Info().Str("env", cfg.Environment).Msg("Resolve handler initialized")
	})
}

func buildResolver(ctx context.Context) (*match.Resolver, error) {
	reg := registryCache.Get()
	if reg == nil {
		loaded, err := catalogLoader.Load(ctx)
		if err != nil {
			return nil, err
		}
		registryCache.Set(loaded)
		reg = loaded
	}

	// the memoized resolver keeps the matcher's LRU warm across invocations
	return resolverCache.For(reg)
}

// handleRequest resolves station text without running a full check-in. The
// client app uses it to preview "did you mean" candidates while the user is
// still framing the photo.
func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if setupErr != nil {
		return api.Error("Service misconfigured", http.StatusInternalServerError)
	}

	params := request.QueryStringParameters
	text, ok := params["q"]
	if !ok || text == "" {
		return api.Error("Missing q parameter", http.StatusBadRequest)
	}

	location, err := api.ParseCoordinates(params)
	if err != nil {
		return api.Error("Invalid coordinates", http.StatusBadRequest)
	}

	resolver, err := buildResolver(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Building resolver")
		return api.Error("Station catalog unavailable", http.StatusServiceUnavailable)
	}

	resolved, err := resolver.Resolve(text, location)
	if err != nil {
		var resErr *match.ResolutionError
		if errors.As(err, &resErr) {
			response := api.NewErrorResponse("station resolution failed")
			response.Code = string(resErr.Reason)
			response.Suggestions = resErr.Suggestions
			statusCode := http.StatusNotFound
			if resErr.Reason == match.ReasonAmbiguous {
				statusCode = http.StatusConflict
			}
			return api.Respond(response, statusCode)
		}
		return api.Error("Unusable station text", http.StatusBadRequest)
	}

	return api.Success(api.NewResolveResponse(*resolved))
}

func main() {
	lambda.Start(handleRequest)
}
