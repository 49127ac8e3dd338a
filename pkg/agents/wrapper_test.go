package agents

import (
	"errors"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent/types"
	"github.com/aws/smithy-go"
	"github.com/sdkexamples/sdkexamples/pkg/cloud"
	"github.com/sdkexamples/sdkexamples/pkg/config"
	"github.com/sdkexamples/sdkexamples/pkg/stub"
)

func newStubbedWrapper(t *testing.T) (*Wrapper, *Stubber) {
	t.Helper()

	r := stub.NewRegistry()
	stub.Verify(t, r)

	return NewFromConfig(stub.Config(stub.NewStubBackend(r))), NewStubber(r)
}

func assertErrorCode(t *testing.T, err error, kind stub.ErrorKind) {
	t.Helper()

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Unexpected error: %v", err)
	}

	if apiErr.ErrorCode() != string(kind) {
		t.Errorf("Unexpected error code: %v (expected %v)", apiErr.ErrorCode(), kind)
	}
}

var testCreateParams = CreateAgentParams{
	Name:            "test-agent",
	FoundationModel: "anthropic.claude-v2",
	RoleARN:         "arn:aws:iam::123456789012:role/test-role",
	Instruction:     "You are a test agent that answers questions about tests.",
}

func TestCreateAgent(t *testing.T) {
	wrapper, stubber := newStubbedWrapper(t)

	stub.MustExpect(t, stubber.StubCreateAgent(testCreateParams, ""))

	agent, err := wrapper.CreateAgent(t.Context(), testCreateParams)
	if err != nil {
		t.Fatal(err)
	}

	if id := aws.ToString(agent.AgentId); id != FakeAgentID {
		t.Errorf("Unexpected agent ID: %v", id)
	}

	if agent.AgentStatus != types.AgentStatusNotPrepared {
		t.Errorf("Unexpected agent status: %v", agent.AgentStatus)
	}
}

func TestCreateAgentError(t *testing.T) {
	wrapper, stubber := newStubbedWrapper(t)

	stub.MustExpect(t, stubber.StubCreateAgent(testCreateParams, stub.ValidationException))

	agent, err := wrapper.CreateAgent(t.Context(), testCreateParams)
	if agent != nil {
		t.Errorf("Unexpected agent: %v", agent)
	}

	assertErrorCode(t, err, stub.ValidationException)
}

func TestCreateAgentMismatch(t *testing.T) {
	r := stub.NewRegistry()
	wrapper := NewFromConfig(stub.Config(stub.NewStubBackend(r)))

	stub.MustExpect(t, NewStubber(r).StubCreateAgent(testCreateParams, ""))

	params := testCreateParams
	params.Instruction = "A different instruction for the very same test agent."

	_, err := wrapper.CreateAgent(t.Context(), params)

	var merr *stub.MismatchError
	if !errors.As(err, &merr) {
		t.Fatalf("Unexpected error: %v", err)
	}

	if r.Pending() != 1 {
		t.Errorf("Mismatch consumed the stub")
	}
}

func TestGetAgent(t *testing.T) {
	wrapper, stubber := newStubbedWrapper(t)

	expected := FakeAgent()
	stub.MustExpect(t, stubber.StubGetAgent(FakeAgentID, expected, ""))

	agent, err := wrapper.GetAgent(t.Context(), FakeAgentID)
	if err != nil {
		t.Fatal(err)
	}

	if aws.ToString(agent.AgentName) != FakeAgentName {
		t.Errorf("Unexpected agent name: %v", aws.ToString(agent.AgentName))
	}
}

func TestGetAgentNotFound(t *testing.T) {
	wrapper, stubber := newStubbedWrapper(t)

	stub.MustExpect(t, stubber.StubGetAgent("missing", nil, stub.ResourceNotFoundException))

	_, err := wrapper.GetAgent(t.Context(), "missing")
	assertErrorCode(t, err, stub.ResourceNotFoundException)
}

func TestListAgents(t *testing.T) {
	wrapper, stubber := newStubbedWrapper(t)

	summaries := []types.AgentSummary{
		{AgentId: aws.String("agent-1"), AgentName: aws.String("first"), AgentStatus: types.AgentStatusPrepared},
		{AgentId: aws.String("agent-2"), AgentName: aws.String("second"), AgentStatus: types.AgentStatusNotPrepared},
	}
	stub.MustExpect(t, stubber.StubListAgents(summaries, ""))

	agents, err := wrapper.ListAgents(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	if len(agents) != len(summaries) {
		t.Fatalf("Unexpected number of agents: %v", len(agents))
	}

	for i := range agents {
		if aws.ToString(agents[i].AgentId) != aws.ToString(summaries[i].AgentId) {
			t.Errorf("Unexpected agent at %v: %v", i, aws.ToString(agents[i].AgentId))
		}
	}
}

func TestListAgentsPaginated(t *testing.T) {
	wrapper, stubber := newStubbedWrapper(t)

	stub.MustExpect(t, stubber.StubListAgentsPage("", []types.AgentSummary{{AgentId: aws.String("agent-1")}}, "page-2", ""))
	stub.MustExpect(t, stubber.StubListAgentsPage("page-2", []types.AgentSummary{{AgentId: aws.String("agent-2")}}, "", ""))

	agents, err := wrapper.ListAgents(t.Context())
	if err != nil {
		t.Fatal(err)
	}

	if len(agents) != 2 {
		t.Fatalf("Unexpected number of agents: %v", len(agents))
	}

	if aws.ToString(agents[1].AgentId) != "agent-2" {
		t.Errorf("Unexpected second agent: %v", aws.ToString(agents[1].AgentId))
	}
}

func TestListAgentsError(t *testing.T) {
	wrapper, stubber := newStubbedWrapper(t)

	stub.MustExpect(t, stubber.StubListAgents(nil, stub.AccessDeniedException))

	_, err := wrapper.ListAgents(t.Context())
	assertErrorCode(t, err, stub.AccessDeniedException)
}

func TestDeleteAgent(t *testing.T) {
	wrapper, stubber := newStubbedWrapper(t)

	stub.MustExpect(t, stubber.StubDeleteAgent(FakeAgentID, ""))

	out, err := wrapper.DeleteAgent(t.Context(), FakeAgentID)
	if err != nil {
		t.Fatal(err)
	}

	if out.AgentStatus != types.AgentStatusDeleting {
		t.Errorf("Unexpected status: %v", out.AgentStatus)
	}
}

func TestDeleteAgentConflict(t *testing.T) {
	wrapper, stubber := newStubbedWrapper(t)

	stub.MustExpect(t, stubber.StubDeleteAgent(FakeAgentID, stub.ConflictException))

	_, err := wrapper.DeleteAgent(t.Context(), FakeAgentID)
	assertErrorCode(t, err, stub.ConflictException)
}

func TestPrepareAgent(t *testing.T) {
	wrapper, stubber := newStubbedWrapper(t)

	stub.MustExpect(t, stubber.StubPrepareAgent(FakeAgentID, ""))

	out, err := wrapper.PrepareAgent(t.Context(), FakeAgentID)
	if err != nil {
		t.Fatal(err)
	}

	if out.AgentStatus != types.AgentStatusPreparing {
		t.Errorf("Unexpected status: %v", out.AgentStatus)
	}

	if aws.ToString(out.AgentVersion) != draftAgentVersion {
		t.Errorf("Unexpected version: %v", aws.ToString(out.AgentVersion))
	}
}

func TestCreateAgentActionGroup(t *testing.T) {
	wrapper, stubber := newStubbedWrapper(t)

	params := ActionGroupParams{
		Name:         "current-date-time",
		Description:  "Gets the current date and time.",
		AgentID:      FakeAgentID,
		AgentVersion: draftAgentVersion,
		LambdaARN:    "arn:aws:lambda:us-east-1:123456789012:function:current-time",
		APISchema:    `{"openapi": "3.0.0"}`,
	}
	stub.MustExpect(t, stubber.StubCreateAgentActionGroup(params, ""))

	group, err := wrapper.CreateAgentActionGroup(t.Context(), params)
	if err != nil {
		t.Fatal(err)
	}

	if aws.ToString(group.ActionGroupId) != FakeActionGroupID {
		t.Errorf("Unexpected action group ID: %v", aws.ToString(group.ActionGroupId))
	}

	if group.ActionGroupState != types.ActionGroupStateEnabled {
		t.Errorf("Unexpected state: %v", group.ActionGroupState)
	}
}

func TestCreateAgentActionGroupQuota(t *testing.T) {
	wrapper, stubber := newStubbedWrapper(t)

	params := ActionGroupParams{Name: "group", AgentID: FakeAgentID, AgentVersion: draftAgentVersion, LambdaARN: "arn", APISchema: "{}"}
	stub.MustExpect(t, stubber.StubCreateAgentActionGroup(params, stub.ServiceQuotaExceededException))

	_, err := wrapper.CreateAgentActionGroup(t.Context(), params)
	assertErrorCode(t, err, stub.ServiceQuotaExceededException)
}

// Runs against the real service only when SX_USE_LIVE_BACKEND is set.
func TestListAgentsLive(t *testing.T) {
	cfg := config.NewEnvConfig(os.Getenv)
	r := stub.NewRegistry()

	backend := cloud.TestBackend(cfg, r)
	if _, ok := backend.(stub.LiveBackend); !ok {
		t.Skip("live backend is not enabled")
	}

	awsCfg, err := cloud.LoadConfig(t.Context(), cfg, backend)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewFromConfig(awsCfg).ListAgents(t.Context()); err != nil {
		t.Fatal(err)
	}
}
