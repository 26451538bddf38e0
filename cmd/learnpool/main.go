package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"learnpool-client/internal/api"
	"learnpool-client/internal/config"
	"learnpool-client/internal/model"
	"learnpool-client/internal/state"
	"learnpool-client/internal/syncer"
	"learnpool-client/internal/view"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "learnpool",
		Short:         "Classroom Q&A client",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("server", "", "API base URL (overrides config)")
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		coursesCmd(),
		sessionsCmd(),
		chatCmd(),
		askCmd(),
		voteCmd(),
		publishCmd(),
		reportCmd(),
		docsCmd(),
		personalityCmd(),
	)
	return root
}

// session bundles everything a command needs: config, persisted state,
// API client, cache, and mutator.
type session struct {
	cfg   *config.Config
	app   *state.App
	cli   *api.Client
	cache *syncer.Cache
	mut   *syncer.Mutator
	log   *logrus.Logger
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cfg.Client.BaseURL = server
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	levelName, _ := cmd.Flags().GetString("log-level")
	if level, err := logrus.ParseLevel(levelName); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	app, err := state.Load(cfg.Client.StatePath)
	if err != nil {
		return nil, err
	}

	onLogout := func() {
		fmt.Fprintln(os.Stderr, "session expired, please log in again")
	}
	cli := api.NewClient(cfg.Client.BaseURL, time.Duration(cfg.Client.TimeoutSeconds)*time.Second, app, onLogout, log)

	cache := syncer.NewCache()
	return &session{
		cfg:   cfg,
		app:   app,
		cli:   cli,
		cache: cache,
		mut:   syncer.NewMutator(cache, log),
		log:   log,
	}, nil
}

func (s *session) requireLogin() error {
	if !s.app.LoggedIn() {
		return fmt.Errorf("not logged in, run: learnpool login")
	}
	return nil
}

func (s *session) deps() view.Deps {
	return view.Deps{API: s.cli, Cache: s.cache, Mut: s.mut, App: s.app, Log: s.log}
}

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if password == "" {
				fmt.Fprint(os.Stderr, "password: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimSpace(line)
			}

			resp, err := s.cli.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Printf("logged in as %s (%s)\n", resp.DisplayName, resp.Role)
			return nil
		},
	}
	cmd.Flags().StringP("email", "e", "", "Account email")
	cmd.Flags().StringP("password", "p", "", "Account password (prompted when omitted)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			if err := s.cli.Logout(); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			if !s.app.LoggedIn() {
				fmt.Println("not logged in")
				return nil
			}
			fmt.Printf("%s (%s), personality %s\n", s.app.DisplayName(), s.app.Role(), s.app.Personality())
			if expiry, ok := s.cli.TokenExpiry(); ok {
				fmt.Printf("token expires %s\n", expiry.Format(time.RFC1123))
			}
			return nil
		},
	}
}

func coursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List your courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			if err := s.requireLogin(); err != nil {
				return err
			}

			var courses []model.CourseSummary
			if s.app.Role() == model.RoleProfessor {
				courses, err = s.cli.ProfessorCourses(cmd.Context())
			} else {
				courses, err = s.cli.StudentCourses(cmd.Context())
			}
			if err != nil {
				return err
			}
			for _, c := range courses {
				fmt.Printf("%4d  %-30s  %d sessions  (%s)\n", c.ID, c.Name, c.SessionCount, c.ProfessorName)
			}
			return nil
		},
	}
}

func sessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions <course-id>",
		Short: "List a course's sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			if err := s.requireLogin(); err != nil {
				return err
			}
			courseID, err := parseID(args[0])
			if err != nil {
				return err
			}

			var sessions []model.SessionSummary
			if s.app.Role() == model.RoleProfessor {
				sessions, err = s.cli.ProfessorSessions(cmd.Context(), courseID)
			} else {
				sessions, err = s.cli.StudentSessions(cmd.Context(), courseID)
			}
			if err != nil {
				return err
			}
			for _, sess := range sessions {
				fmt.Printf("%4d  %-30s  %-9s  %s\n", sess.ID, sess.Title, sess.Status, sess.StartedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat <session-id>",
		Short: "Follow a session transcript live",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			if err := s.requireLogin(); err != nil {
				return err
			}
			sessionID, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			poll := time.Duration(s.cfg.Client.TranscriptPollSeconds) * time.Second
			chat, err := view.OpenChat(ctx, s.deps(), sessionID, poll)
			if err != nil {
				return err
			}
			defer chat.Close()

			fmt.Printf("session %d (%s), ctrl-c to leave\n", sessionID, chat.Status())
			printTranscript(chat)

			ticker := time.NewTicker(poll)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if _, grew := chat.Questions(); grew {
						printTranscript(chat)
					}
				}
			}
		},
	}
	return cmd
}

func printTranscript(chat *view.ChatView) {
	questions, _ := chat.Questions()
	fmt.Printf("--- %s ---\n", time.Now().Format("15:04:05"))
	for _, q := range questions {
		fmt.Printf("[%d] %s\n", q.QuestionID, q.Content)
		if q.Answer == nil {
			fmt.Println("     (answer pending)")
			continue
		}
		fmt.Printf("     answer %d: %s\n", q.Answer.ID, q.Answer.Content)
		for _, cit := range q.Answer.Citations {
			page := ""
			if cit.PageNumber != nil {
				page = fmt.Sprintf(" p.%d", *cit.PageNumber)
			}
			fmt.Printf("       [%d]%s %s\n", cit.CitationOrder, page, cit.Content)
		}
	}
}

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <session-id> <question...>",
		Short: "Ask a question in a session",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			if err := s.requireLogin(); err != nil {
				return err
			}
			sessionID, err := parseID(args[0])
			if err != nil {
				return err
			}
			content := strings.Join(args[1:], " ")
			anonymous, _ := cmd.Flags().GetBool("anonymous")

			chat, err := view.OpenChat(cmd.Context(), s.deps(), sessionID, 0)
			if err != nil {
				return err
			}
			defer chat.Close()

			out, err := chat.Ask(cmd.Context(), content, anonymous)
			if err != nil {
				return err
			}
			fmt.Printf("asked question %d, the answer arrives on the next poll\n", out.QuestionID)
			return nil
		},
	}
	cmd.Flags().BoolP("anonymous", "a", false, "Hide your name in the shared report")
	return cmd
}

func voteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vote <session-id> <answer-id> <up|down>",
		Short: "Vote on an answer in the session report",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			if err := s.requireLogin(); err != nil {
				return err
			}
			sessionID, err := parseID(args[0])
			if err != nil {
				return err
			}
			answerID, err := parseID(args[1])
			if err != nil {
				return err
			}
			dir := model.FeedbackValue(args[2])
			if !dir.Valid() {
				return fmt.Errorf("vote must be up or down")
			}

			rep, err := view.OpenReport(cmd.Context(), s.deps(), sessionID, 0)
			if err != nil {
				return err
			}
			defer rep.Close()

			if err := rep.Vote(cmd.Context(), answerID, dir); err != nil {
				return err
			}
			fmt.Println("vote recorded")
			return nil
		},
	}
}

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish <session-id> <question-id>...",
		Short: "Share your questions into the session report",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			if err := s.requireLogin(); err != nil {
				return err
			}
			sessionID, err := parseID(args[0])
			if err != nil {
				return err
			}
			ids := make([]uint, 0, len(args)-1)
			for _, raw := range args[1:] {
				id, err := parseID(raw)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			chat, err := view.OpenChat(cmd.Context(), s.deps(), sessionID, 0)
			if err != nil {
				return err
			}
			defer chat.Close()

			if err := chat.Publish(cmd.Context(), ids); err != nil {
				return err
			}
			fmt.Printf("published %d question(s)\n", len(ids))
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <session-id>",
		Short: "Show the aggregated session report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			if err := s.requireLogin(); err != nil {
				return err
			}
			sessionID, err := parseID(args[0])
			if err != nil {
				return err
			}
			watch, _ := cmd.Flags().GetBool("watch")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			poll := time.Duration(0)
			if watch {
				poll = time.Duration(s.cfg.Client.ReportPollSeconds) * time.Second
			}
			rep, err := view.OpenReport(ctx, s.deps(), sessionID, poll)
			if err != nil {
				return err
			}
			defer rep.Close()

			printReport(rep)
			if !watch {
				return nil
			}

			ticker := time.NewTicker(poll)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					printReport(rep)
				}
			}
		},
	}
	cmd.Flags().BoolP("watch", "w", false, "Keep polling and reprinting the report")
	return cmd
}

func printReport(rep *view.ReportView) {
	metrics := rep.Metrics()
	fmt.Printf("--- %s ---\n", time.Now().Format("15:04:05"))
	fmt.Printf("questions %d, votes %d, engagement %d%%, needs attention %d, students ~%d\n",
		metrics.TotalQuestions, metrics.TotalVotes, metrics.EngagementPct, metrics.AttentionCount, metrics.UniqueStudents)
	if hot, ok := rep.HottestTopic(); ok {
		fmt.Printf("hottest topic: %s (%d questions)\n", hot.TopicName, hot.QuestionCount)
	}

	for _, g := range rep.GroupsByAttention() {
		fmt.Printf("\n%s (%d questions, %d students)\n", g.TopicName, g.QuestionCount, g.StudentCount)
		for _, q := range g.Questions {
			who := q.AnonymousName
			if who == "" {
				who = "named student"
			}
			fmt.Printf("  [%d] %s  -- %s\n", q.QuestionID, q.Content, who)
			if q.Feedback != nil {
				marker := ""
				if q.Feedback.NeedsAttention {
					marker = "  !! needs attention"
				}
				mine := ""
				if q.MyFeedback != "" {
					mine = fmt.Sprintf(", yours %s", q.MyFeedback)
				}
				fmt.Printf("      +%d / -%d%s%s\n", q.Feedback.ThumbsUp, q.Feedback.ThumbsDown, mine, marker)
			}
			if len(q.Labels) > 0 {
				fmt.Printf("      labels: %s\n", strings.Join(q.Labels, ", "))
			}
			if q.Notes != "" {
				fmt.Printf("      notes: %s\n", q.Notes)
			}
		}
	}
}

func docsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "docs <session-id>",
		Short: "List a session's lecture materials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			if err := s.requireLogin(); err != nil {
				return err
			}
			sessionID, err := parseID(args[0])
			if err != nil {
				return err
			}

			docs, err := s.cli.SessionDocuments(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			for _, d := range docs {
				location := d.URL
				if location == "" {
					location = d.StoragePath
				}
				fmt.Printf("%4d  %-40s  %s\n", d.ID, d.Filename, location)
			}
			return nil
		},
	}
}

func personalityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "personality [supportive|normal|funny]",
		Short: "Show or set the answer personality",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Println(s.app.Personality())
				return nil
			}
			p := model.Personality(args[0])
			if !p.Valid() {
				return fmt.Errorf("personality must be supportive, normal, or funny")
			}
			if err := s.app.SetPersonality(p); err != nil {
				return err
			}
			fmt.Printf("personality set to %s\n", p)
			return nil
		},
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}
