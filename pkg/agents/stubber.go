package agents

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent/types"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sdkexamples/sdkexamples/pkg/stub"
)

const (
	FakeAgentID         = "ARANDOMAGENTID"
	FakeAgentName       = "fake_agent_name"
	FakeFoundationModel = "fake.model-id"
	FakeInstruction     = "fake instruction with a minimum of 40 characters"
	FakeAgentVersion    = "1.234.5"
	FakeActionGroupID   = "ARANDOMACTIONGROUPID"
	FakeIdleSessionTTL  = 60
	fakeARN             = "xxx"
	draftAgentVersion   = "DRAFT"
)

var (
	fakeTime = time.Unix(0, 0).UTC()

	// CreateAgent and CreateAgentActionGroup fill ClientToken themselves.
	ignoreCreateAgentToken       = cmpopts.IgnoreFields(bedrockagent.CreateAgentInput{}, "ClientToken")
	ignoreCreateActionGroupToken = cmpopts.IgnoreFields(bedrockagent.CreateAgentActionGroupInput{}, "ClientToken")
)

// FakeAgent is the agent returned by stubbed CreateAgent calls.
func FakeAgent() *types.Agent {
	return &types.Agent{
		AgentId:                 aws.String(FakeAgentID),
		AgentName:               aws.String(FakeAgentName),
		AgentArn:                aws.String(fakeARN),
		FoundationModel:         aws.String(FakeFoundationModel),
		Instruction:             aws.String(FakeInstruction),
		AgentVersion:            aws.String(FakeAgentVersion),
		AgentStatus:             types.AgentStatusNotPrepared,
		IdleSessionTTLInSeconds: aws.Int32(FakeIdleSessionTTL),
		AgentResourceRoleArn:    aws.String(fakeARN),
		CreatedAt:               aws.Time(fakeTime),
		UpdatedAt:               aws.Time(fakeTime),
	}
}

// Stubber programs a registry with the requests Wrapper sends and canned
// responses shaped like the service's. Passing a non-empty kind makes the
// call fail with that error code instead.
type Stubber struct {
	registry *stub.Registry
}

func NewStubber(r *stub.Registry) *Stubber {
	return &Stubber{registry: r}
}

func (s *Stubber) StubCreateAgent(params CreateAgentParams, kind stub.ErrorKind) error {
	response := &bedrockagent.CreateAgentOutput{Agent: FakeAgent()}
	return s.registry.Expect("CreateAgent", params.input(), stub.Choose(response, kind), ignoreCreateAgentToken)
}

func (s *Stubber) StubGetAgent(agentID string, agent *types.Agent, kind stub.ErrorKind) error {
	expected := &bedrockagent.GetAgentInput{AgentId: aws.String(agentID)}
	response := &bedrockagent.GetAgentOutput{Agent: agent}
	return s.registry.Expect("GetAgent", expected, stub.Choose(response, kind))
}

// StubListAgents programs a single page holding all agents.
func (s *Stubber) StubListAgents(agents []types.AgentSummary, kind stub.ErrorKind) error {
	return s.StubListAgentsPage("", agents, "", kind)
}

// StubListAgentsPage programs one page of a paginated listing: the request
// carrying token and the response pointing at next.
func (s *Stubber) StubListAgentsPage(token string, agents []types.AgentSummary, next string, kind stub.ErrorKind) error {
	expected := &bedrockagent.ListAgentsInput{}
	if len(token) > 0 {
		expected.NextToken = aws.String(token)
	}

	response := &bedrockagent.ListAgentsOutput{AgentSummaries: agents}
	if len(next) > 0 {
		response.NextToken = aws.String(next)
	}

	return s.registry.Expect("ListAgents", expected, stub.Choose(response, kind))
}

func (s *Stubber) StubDeleteAgent(agentID string, kind stub.ErrorKind) error {
	expected := &bedrockagent.DeleteAgentInput{AgentId: aws.String(agentID)}
	response := &bedrockagent.DeleteAgentOutput{
		AgentId:     aws.String(agentID),
		AgentStatus: types.AgentStatusDeleting,
	}
	return s.registry.Expect("DeleteAgent", expected, stub.Choose(response, kind))
}

func (s *Stubber) StubPrepareAgent(agentID string, kind stub.ErrorKind) error {
	expected := &bedrockagent.PrepareAgentInput{AgentId: aws.String(agentID)}
	response := &bedrockagent.PrepareAgentOutput{
		AgentId:      aws.String(agentID),
		AgentStatus:  types.AgentStatusPreparing,
		AgentVersion: aws.String(draftAgentVersion),
		PreparedAt:   aws.Time(fakeTime),
	}
	return s.registry.Expect("PrepareAgent", expected, stub.Choose(response, kind))
}

func (s *Stubber) StubCreateAgentActionGroup(params ActionGroupParams, kind stub.ErrorKind) error {
	response := &bedrockagent.CreateAgentActionGroupOutput{
		AgentActionGroup: &types.AgentActionGroup{
			ActionGroupId:    aws.String(FakeActionGroupID),
			ActionGroupName:  aws.String(params.Name),
			AgentId:          aws.String(params.AgentID),
			AgentVersion:     aws.String(params.AgentVersion),
			Description:      aws.String(params.Description),
			ActionGroupState: types.ActionGroupStateEnabled,
			CreatedAt:        aws.Time(fakeTime),
			UpdatedAt:        aws.Time(fakeTime),
		},
	}
	return s.registry.Expect("CreateAgentActionGroup", params.input(), stub.Choose(response, kind), ignoreCreateActionGroupToken)
}
