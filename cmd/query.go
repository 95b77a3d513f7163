package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	contractx "github.com/tanpawarit/Chative-Student-Advisor/agent/contract"
	toolx "github.com/tanpawarit/Chative-Student-Advisor/agent/tool"
)

var (
	jsonOutput   bool
	showSchedule bool
)

var eligibleCmd = &cobra.Command{
	Use:   "eligible",
	Short: "List the courses a student can enroll in for a term",
	Example: `  advisor eligible --student S002 --term fall --year 2024
  advisor eligible --student S002 --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, contractx.AgentTypeScheduler, toolx.ToolCoursesEnrollable, func(rc contractx.RequestContext) map[string]any {
			return map[string]any{}
		})
	},
}

var courseCmd = &cobra.Command{
	Use:     "course <course_id>",
	Short:   "Show catalog details for one course",
	Example: "  advisor course CS218",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, contractx.AgentTypeScheduler, toolx.ToolCoursesDetails, func(contractx.RequestContext) map[string]any {
			return map[string]any{"course_id": args[0]}
		})
	},
}

var offeringsCmd = &cobra.Command{
	Use:     "offerings",
	Short:   "List the courses offered in a term",
	Example: "  advisor offerings --term spring --year 2025",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, contractx.AgentTypeScheduler, toolx.ToolCoursesOfferings, func(contractx.RequestContext) map[string]any {
			return map[string]any{}
		})
	},
}

var faqCmd = &cobra.Command{
	Use:     "faq <question>",
	Short:   "Answer an advising question from the FAQ list",
	Example: `  advisor faq "how do I drop a course?"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, contractx.AgentTypeTalkative, toolx.ToolFAQAnswer, func(contractx.RequestContext) map[string]any {
			return map[string]any{"question": strings.Join(args, " ")}
		})
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule [course_id...]",
	Short: "Save a course selection as the student's schedule, or show it",
	Example: `  advisor schedule CS102 MATH231 --student S002 --term spring --year 2025
  advisor schedule --show --student S002 --term spring --year 2025`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showSchedule {
			return runCurrentSchedule(cmd)
		}
		if len(args) == 0 {
			return errors.New("at least one course id is required")
		}
		return runTool(cmd, contractx.AgentTypeScheduler, toolx.ToolScheduleRender, func(contractx.RequestContext) map[string]any {
			ids := make([]any, 0, len(args))
			for _, id := range args {
				ids = append(ids, id)
			}
			return map[string]any{"course_ids": ids}
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{eligibleCmd, courseCmd, offeringsCmd, faqCmd, scheduleCmd} {
		c.Flags().BoolVar(&jsonOutput, "json", false, "print the raw tool result as JSON")
		rootCmd.AddCommand(c)
	}
	scheduleCmd.Flags().BoolVar(&showSchedule, "show", false, "show the saved schedule instead of saving one")
}

// runTool runs one tool with term, year and student taken from the request
// context, then prints the result.
func runTool(cmd *cobra.Command, agent contractx.AgentType, tool string, argsFor func(contractx.RequestContext) map[string]any) error {
	a, rc, err := session(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	rc.SessionID = "cli"

	res, err := a.run(cmd.Context(), agent, rc, tool, argsFor(rc))
	if err != nil {
		return err
	}
	if jsonOutput {
		if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	} else if err := render(cmd.OutOrStdout(), formatResult(res)); err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("%s failed: %s", tool, res.Kind)
	}
	return nil
}

func runCurrentSchedule(cmd *cobra.Command) error {
	a, rc, err := session(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.planner.Current(cmd.Context(), rc.StudentID, rc.Term, rc.Year)
	if err != nil {
		return err
	}
	res := contractx.Succeeded("schedule.current", "schedule", s, "")
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	return render(cmd.OutOrStdout(), formatResult(res))
}
