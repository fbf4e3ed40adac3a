// internal/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/user/magnus/internal/types"
	"github.com/user/magnus/pkg/llm"
)

// PlanningMessage is the plan text shown while the planning call is in flight.
const PlanningMessage = "The team is assessing the query and creating a plan..."

// Orchestrator runs sequential multi-agent collaborations: one planning call
// produces a task list, each task is executed by a role-played specialist
// with the accumulated outputs of its predecessors as context, and the
// Synthesizer's output becomes the final response.
type Orchestrator struct {
	provider llm.Provider
	logger   *slog.Logger
}

// New creates an orchestrator backed by the given provider.
func New(provider llm.Provider, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{provider: provider, logger: logger}
}

// planResult is the shape of the planning call's JSON response.
type planResult struct {
	Plan  string `json:"plan"`
	Tasks []struct {
		Role string `json:"role"`
		Task string `json:"task"`
	} `json:"tasks"`
}

func planSchema() *llm.Schema {
	roles := types.AgentRoles()
	roleNames := make([]string, len(roles))
	for i, r := range roles {
		roleNames[i] = string(r)
	}

	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"plan": {Type: llm.TypeString, Description: "A high-level plan for the team."},
			"tasks": {
				Type:        llm.TypeArray,
				Description: "The list of tasks for the agents.",
				Items: &llm.Schema{
					Type: llm.TypeObject,
					Properties: map[string]*llm.Schema{
						"role": {Type: llm.TypeString, Enum: roleNames},
						"task": {Type: llm.TypeString, Description: "The specific task for this agent."},
					},
					Required: []string{"role", "task"},
				},
			},
		},
		Required: []string{"plan", "tasks"},
	}
}

func plannerPrompt(query string) string {
	roles := types.AgentRoles()
	roleNames := make([]string, len(roles))
	for i, r := range roles {
		roleNames[i] = string(r)
	}
	return fmt.Sprintf(`User query: %q.
You are a project manager. Your job is to break down the user's query into a sequence of tasks for a team of expert AI agents.
The available agent roles are: %s.
Provide a high-level plan and then a list of tasks with the most appropriate agent for each. The final agent must be a Synthesizer.`,
		query, strings.Join(roleNames, ", "))
}

// agentInstruction builds the system instruction for one specialist, with
// every completed predecessor's output inlined as context.
func agentInstruction(role types.AgentRole, task string, done []types.AgentTask) string {
	var prior strings.Builder
	for _, t := range done {
		fmt.Fprintf(&prior, "- %s's output: %s\n", t.Role, t.Output)
	}
	return fmt.Sprintf(`You are the %s, an expert in your field.
Your current task is: %q.
Here are the results from previous agents you can use as context:
%s
Focus ONLY on your assigned task and provide a concise, expert response.`,
		role, task, prior.String())
}

// Run executes a full collaboration for the query. publish is called with a
// deep-copied snapshot after every state transition, the terminal one
// included; it may be nil. Failures never propagate as errors: the run
// finishes with the failure recorded in FinalResponse and the remaining
// tasks untouched.
func (o *Orchestrator) Run(ctx context.Context, query string, publish func(*types.MultiAgentState)) *types.MultiAgentState {
	state := &types.MultiAgentState{
		OriginalQuery: query,
		Plan:          PlanningMessage,
	}
	emit := func() {
		if publish != nil {
			publish(state.Clone())
		}
	}
	fail := func(err error) *types.MultiAgentState {
		o.logger.Error("collaboration failed", "error", err)
		state.FinalResponse = fmt.Sprintf("An error occurred during the collaboration: %v", err)
		emit()
		return state
	}

	emit()

	resp, err := o.provider.Generate(ctx, &llm.Request{
		Contents: []llm.Content{llm.NewTextContent(llm.RoleUser, plannerPrompt(query))},
		Schema:   planSchema(),
	})
	if err != nil {
		return fail(fmt.Errorf("plan collaboration: %w", err))
	}

	var plan planResult
	if err := json.Unmarshal([]byte(resp.Text), &plan); err != nil {
		return fail(fmt.Errorf("parse plan: %w", err))
	}
	if len(plan.Tasks) == 0 {
		return fail(fmt.Errorf("plan contains no tasks"))
	}

	state.Plan = plan.Plan
	state.Tasks = make([]types.AgentTask, len(plan.Tasks))
	for i, t := range plan.Tasks {
		state.Tasks[i] = types.AgentTask{Role: types.AgentRole(t.Role), Instruction: t.Task}
	}
	emit()

	o.logger.Info("collaboration planned", "tasks", len(state.Tasks))

	for i := range state.Tasks {
		task := &state.Tasks[i]
		resp, err := o.provider.Generate(ctx, &llm.Request{
			Contents: []llm.Content{llm.NewTextContent(llm.RoleUser,
				fmt.Sprintf("Original user query for context: %q\nExecute your task.", query))},
			SystemInstruction: agentInstruction(task.Role, task.Instruction, state.Tasks[:i]),
		})
		if err != nil {
			return fail(fmt.Errorf("agent %s: %w", task.Role, err))
		}

		task.Output = resp.Text
		task.Complete = true
		emit()

		o.logger.Info("agent task complete", "role", task.Role, "index", i)
	}

	state.FinalResponse = synthesize(state.Tasks)
	emit()
	return state
}

// synthesize picks the Synthesizer's output, falling back to the last task.
func synthesize(tasks []types.AgentTask) string {
	for _, t := range tasks {
		if t.Role == types.RoleSynthesizer {
			return t.Output
		}
	}
	return tasks[len(tasks)-1].Output
}

// Stream runs the collaboration in a goroutine and returns a channel of
// state snapshots. The channel is closed after the terminal snapshot.
func (o *Orchestrator) Stream(ctx context.Context, query string) <-chan *types.MultiAgentState {
	ch := make(chan *types.MultiAgentState, 16)
	go func() {
		defer close(ch)
		o.Run(ctx, query, func(s *types.MultiAgentState) {
			ch <- s
		})
	}()
	return ch
}
