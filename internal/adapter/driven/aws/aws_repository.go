package aws

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/diillson/aws-log-remediator/internal/domain/repository"
	"github.com/diillson/aws-log-remediator/internal/shared/types"
)

// Nomes dos serviços usados no cache de clientes e nos erros classificados.
const (
	serviceLogs   = "cloudwatchlogs"
	serviceSTS    = "sts"
	serviceLambda = "lambda"
	serviceRDS    = "rds"
	serviceS3     = "s3"
)

type logsAPI interface {
	DescribeLogGroups(ctx context.Context, params *cloudwatchlogs.DescribeLogGroupsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogGroupsOutput, error)
}

type stsAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type lambdaAPI interface {
	GetFunctionConfiguration(ctx context.Context, params *lambda.GetFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionConfigurationOutput, error)
}

type rdsAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// AWSRepositoryImpl implementa o AWSRepository com cache de clientes.
type AWSRepositoryImpl struct {
	cfg         aws.Config
	cfgLoaded   bool
	clientCache map[string]interface{}
	mu          sync.Mutex
}

// Option configura o AWSRepositoryImpl.
type Option func(*AWSRepositoryImpl)

// WithAWSConfig usa uma aws.Config pronta em vez de montar uma a partir do types.Config.
func WithAWSConfig(cfg aws.Config) Option {
	return func(r *AWSRepositoryImpl) {
		r.cfg = cfg
		r.cfgLoaded = true
	}
}

// WithClient registra um cliente já construído para o serviço (usado em testes).
func WithClient(service string, client interface{}) Option {
	return func(r *AWSRepositoryImpl) { r.clientCache[service] = client }
}

// NewAWSRepository cria uma nova implementação do AWSRepository com as credenciais
// estáticas da configuração. O retryer do SDK é desligado: quem decide sobre
// retentativas é o retry.Policy do usecase.
func NewAWSRepository(ctx context.Context, cfg *types.Config, opts ...Option) (repository.AWSRepository, error) {
	r := &AWSRepositoryImpl{clientCache: make(map[string]interface{})}
	for _, opt := range opts {
		opt(r)
	}
	if r.cfgLoaded {
		return r, nil
	}

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	r.cfg = awsCfg
	return r, nil
}

func loadAWSConfig(ctx context.Context, cfg *types.Config) (aws.Config, error) {
	httpClient := awshttp.NewBuildableClient().WithTimeout(cfg.RequestTimeout)
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken)
	retryer := func() aws.Retryer { return aws.NopRetryer{} }

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(creds),
		config.WithRetryer(retryer),
		config.WithHTTPClient(httpClient),
	)
	if err == nil {
		return awsCfg, nil
	}

	// As credenciais são sempre estáticas: um AWS_PROFILE inexistente ou um
	// ~/.aws/config ilegível não pode impedir a execução.
	var missingProfile config.SharedConfigProfileNotExistError
	var badSharedFile config.SharedConfigLoadError
	if errors.As(err, &missingProfile) || errors.As(err, &badSharedFile) {
		return aws.Config{
			Region:      cfg.Region,
			Credentials: aws.NewCredentialsCache(creds),
			Retryer:     retryer,
			HTTPClient:  httpClient,
		}, nil
	}
	return aws.Config{}, fmt.Errorf("failed to load AWS config for region %s: %w", cfg.Region, err)
}

func (r *AWSRepositoryImpl) getServiceClient(service string) (interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clientCache[service]; ok {
		return client, nil
	}

	cfg := r.cfg.Copy()

	var client interface{}
	switch service {
	case serviceLogs:
		client = cloudwatchlogs.NewFromConfig(cfg)
	case serviceSTS:
		client = sts.NewFromConfig(cfg)
	case serviceLambda:
		client = lambda.NewFromConfig(cfg)
	case serviceRDS:
		client = rds.NewFromConfig(cfg)
	case serviceS3:
		client = s3.NewFromConfig(cfg)
	default:
		return nil, fmt.Errorf("unsupported service: %s", service)
	}

	r.clientCache[service] = client
	return client, nil
}

func (r *AWSRepositoryImpl) logsClient() (logsAPI, error) {
	c, err := r.getServiceClient(serviceLogs)
	if err != nil {
		return nil, err
	}
	return c.(logsAPI), nil
}

func (r *AWSRepositoryImpl) stsClient() (stsAPI, error) {
	c, err := r.getServiceClient(serviceSTS)
	if err != nil {
		return nil, err
	}
	return c.(stsAPI), nil
}

func (r *AWSRepositoryImpl) lambdaClient() (lambdaAPI, error) {
	c, err := r.getServiceClient(serviceLambda)
	if err != nil {
		return nil, err
	}
	return c.(lambdaAPI), nil
}

func (r *AWSRepositoryImpl) rdsClient() (rdsAPI, error) {
	c, err := r.getServiceClient(serviceRDS)
	if err != nil {
		return nil, err
	}
	return c.(rdsAPI), nil
}

func (r *AWSRepositoryImpl) s3Client() (s3API, error) {
	c, err := r.getServiceClient(serviceS3)
	if err != nil {
		return nil, err
	}
	return c.(s3API), nil
}

// GetAccountID retorna a conta dona das credenciais.
func (r *AWSRepositoryImpl) GetAccountID(ctx context.Context) (string, error) {
	client, err := r.stsClient()
	if err != nil {
		return "", err
	}

	result, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", classifyAWSError(serviceSTS, err)
	}
	return aws.ToString(result.Account), nil
}
