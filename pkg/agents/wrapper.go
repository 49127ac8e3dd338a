package agents

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent/types"
	"github.com/aws/smithy-go"
	"github.com/sdkexamples/sdkexamples/pkg/common"
)

// API is the part of the agents service client used by Wrapper.
type API interface {
	CreateAgent(ctx context.Context, params *bedrockagent.CreateAgentInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.CreateAgentOutput, error)
	GetAgent(ctx context.Context, params *bedrockagent.GetAgentInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.GetAgentOutput, error)
	ListAgents(ctx context.Context, params *bedrockagent.ListAgentsInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.ListAgentsOutput, error)
	DeleteAgent(ctx context.Context, params *bedrockagent.DeleteAgentInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.DeleteAgentOutput, error)
	PrepareAgent(ctx context.Context, params *bedrockagent.PrepareAgentInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.PrepareAgentOutput, error)
	CreateAgentActionGroup(ctx context.Context, params *bedrockagent.CreateAgentActionGroupInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.CreateAgentActionGroupOutput, error)
}

var _ API = (*bedrockagent.Client)(nil)

var (
	errNoAgent       = errors.New("service returned no agent")
	errNoActionGroup = errors.New("service returned no action group")
)

type CreateAgentParams struct {
	Name            string
	FoundationModel string
	RoleARN         string
	Instruction     string
}

func (p *CreateAgentParams) input() *bedrockagent.CreateAgentInput {
	return &bedrockagent.CreateAgentInput{
		AgentName:            aws.String(p.Name),
		FoundationModel:      aws.String(p.FoundationModel),
		AgentResourceRoleArn: aws.String(p.RoleARN),
		Instruction:          aws.String(p.Instruction),
	}
}

type ActionGroupParams struct {
	Name         string
	Description  string
	AgentID      string
	AgentVersion string
	LambdaARN    string
	APISchema    string
}

func (p *ActionGroupParams) input() *bedrockagent.CreateAgentActionGroupInput {
	return &bedrockagent.CreateAgentActionGroupInput{
		ActionGroupName:     aws.String(p.Name),
		Description:         aws.String(p.Description),
		AgentId:             aws.String(p.AgentID),
		AgentVersion:        aws.String(p.AgentVersion),
		ActionGroupExecutor: &types.ActionGroupExecutorMemberLambda{Value: p.LambdaARN},
		ApiSchema:           &types.APISchemaMemberPayload{Value: p.APISchema},
	}
}

func NewFromConfig(cfg aws.Config) *Wrapper {
	return NewWrapper(bedrockagent.NewFromConfig(cfg))
}

type Wrapper struct {
	client API
}

func NewWrapper(client API) *Wrapper {
	return &Wrapper{client: client}
}

func errorCodeAttr(err error) slog.Attr {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return slog.String("code", apiErr.ErrorCode())
	}

	return slog.String("code", "")
}

func (w *Wrapper) CreateAgent(ctx context.Context, params CreateAgentParams) (*types.Agent, error) {
	ctx = common.OperationContext(ctx, "CreateAgent")

	out, err := w.client.CreateAgent(ctx, params.input())
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create agent", "name", params.Name, errorCodeAttr(err), common.ErrAttr(err))
		return nil, err
	}

	if out.Agent == nil {
		return nil, errNoAgent
	}

	slog.InfoContext(ctx, "Created agent", "name", params.Name, "agentID", aws.ToString(out.Agent.AgentId))

	return out.Agent, nil
}

func (w *Wrapper) GetAgent(ctx context.Context, agentID string) (*types.Agent, error) {
	ctx = common.OperationContext(ctx, "GetAgent")

	out, err := w.client.GetAgent(ctx, &bedrockagent.GetAgentInput{AgentId: aws.String(agentID)})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to get agent", "agentID", agentID, errorCodeAttr(err), common.ErrAttr(err))
		return nil, err
	}

	if out.Agent == nil {
		return nil, errNoAgent
	}

	return out.Agent, nil
}

// ListAgents returns the summaries of all agents, following pagination.
func (w *Wrapper) ListAgents(ctx context.Context) ([]types.AgentSummary, error) {
	ctx = common.OperationContext(ctx, "ListAgents")

	var agents []types.AgentSummary

	paginator := bedrockagent.NewListAgentsPaginator(w.client, &bedrockagent.ListAgentsInput{})
	for page := 0; paginator.HasMorePages(); page++ {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to list agents", "page", page, errorCodeAttr(err), common.ErrAttr(err))
			return nil, err
		}

		agents = append(agents, out.AgentSummaries...)
	}

	slog.DebugContext(ctx, "Listed agents", "count", len(agents))

	return agents, nil
}

func (w *Wrapper) DeleteAgent(ctx context.Context, agentID string) (*bedrockagent.DeleteAgentOutput, error) {
	ctx = common.OperationContext(ctx, "DeleteAgent")

	out, err := w.client.DeleteAgent(ctx, &bedrockagent.DeleteAgentInput{AgentId: aws.String(agentID)})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to delete agent", "agentID", agentID, errorCodeAttr(err), common.ErrAttr(err))
		return nil, err
	}

	slog.InfoContext(ctx, "Deleted agent", "agentID", agentID, "status", string(out.AgentStatus))

	return out, nil
}

func (w *Wrapper) PrepareAgent(ctx context.Context, agentID string) (*bedrockagent.PrepareAgentOutput, error) {
	ctx = common.OperationContext(ctx, "PrepareAgent")

	out, err := w.client.PrepareAgent(ctx, &bedrockagent.PrepareAgentInput{AgentId: aws.String(agentID)})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to prepare agent", "agentID", agentID, errorCodeAttr(err), common.ErrAttr(err))
		return nil, err
	}

	slog.InfoContext(ctx, "Prepared agent", "agentID", agentID, "status", string(out.AgentStatus))

	return out, nil
}

func (w *Wrapper) CreateAgentActionGroup(ctx context.Context, params ActionGroupParams) (*types.AgentActionGroup, error) {
	ctx = common.OperationContext(ctx, "CreateAgentActionGroup")

	out, err := w.client.CreateAgentActionGroup(ctx, params.input())
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create agent action group", "name", params.Name, "agentID", params.AgentID,
			errorCodeAttr(err), common.ErrAttr(err))
		return nil, err
	}

	if out.AgentActionGroup == nil {
		return nil, errNoActionGroup
	}

	slog.InfoContext(ctx, "Created agent action group", "name", params.Name,
		"actionGroupID", aws.ToString(out.AgentActionGroup.ActionGroupId))

	return out.AgentActionGroup, nil
}
