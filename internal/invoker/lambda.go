package invoker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"go.uber.org/zap"
)

const DefaultFunctionName = "coffee_chatbot_docker_function2"

type lambdaAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaInvoker implementa Invoker contra una función AWS Lambda en modo RequestResponse.
type LambdaInvoker struct {
	client       lambdaAPI
	functionName string
	logger       *zap.Logger
}

// Credentials son los valores estáticos que entrega el entorno al arrancar.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// NewLambdaClient construye el cliente del SDK. Si no hay claves estáticas
// se usa la cadena de credenciales por defecto.
func NewLambdaClient(ctx context.Context, creds Credentials) (*lambda.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(creds.Region),
	}
	if creds.AccessKeyID != "" && creds.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return lambda.NewFromConfig(cfg), nil
}

func NewLambdaInvoker(client lambdaAPI, functionName string, logger *zap.Logger) *LambdaInvoker {
	if strings.TrimSpace(functionName) == "" {
		functionName = DefaultFunctionName
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LambdaInvoker{
		client:       client,
		functionName: functionName,
		logger:       logger,
	}
}

// Invoke no envuelve los errores del SDK: su texto es lo que termina viendo el usuario.
func (l *LambdaInvoker) Invoke(ctx context.Context, payload []byte) ([]byte, error) {
	start := time.Now()
	out, err := l.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(l.functionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		l.logger.Warn("lambda invoke failed",
			zap.String("function", l.functionName),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	l.logger.Debug("lambda invoked",
		zap.String("function", l.functionName),
		zap.Int32("status", out.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if out.FunctionError != nil {
		return nil, newFunctionError(aws.ToString(out.FunctionError), out.Payload)
	}
	return out.Payload, nil
}

// FunctionError representa un fallo dentro de la función (crash o excepción no manejada).
type FunctionError struct {
	Kind    string
	Type    string
	Message string
}

func (e *FunctionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Type != "" {
		return e.Type
	}
	return "function error: " + e.Kind
}

func newFunctionError(kind string, payload []byte) *FunctionError {
	fe := &FunctionError{Kind: kind}
	var body struct {
		ErrorMessage string `json:"errorMessage"`
		ErrorType    string `json:"errorType"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		fe.Message = body.ErrorMessage
		fe.Type = body.ErrorType
	}
	return fe
}
