package tests

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/Meghashree-V/smart-surveillance-system-for-campus/apps/api/echo"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/attendance"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/event"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/invite"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/student"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/user"
	emailsvc "github.com/Meghashree-V/smart-surveillance-system-for-campus/services/email"
	mediasvc "github.com/Meghashree-V/smart-surveillance-system-for-campus/services/media"
	metricsvc "github.com/Meghashree-V/smart-surveillance-system-for-campus/services/metrics"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/database"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/inmem"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/testutil"
)

const (
	adminPwd   = "admin123"
	staffPwd   = "Campus#2024"
	studentPwd = "student123"
)

var (
	aviData = append([]byte("RIFF\x00\x10\x00\x00AVI LIST"), bytes.Repeat([]byte{0}, 64)...)
	pngData = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	pdfData = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type testEnv struct {
	app      Server
	conf     *core.Config
	metrics  *metricsvc.Metrics
	queue    *inmem.Queue
	mediaDir string

	usrRepo user.Repository
	stdRepo student.Repository
	attRepo attendance.Repository
	evtRepo event.Repository
}

// setup builds a server over a fresh memory store. confOpts may tweak the configuration before anything is built;
// depsOpts may tweak the server dependencies.
func setup(t *testing.T, confOpts []func(*core.Config), depsOpts ...func(*ServerDeps)) *testEnv {
	conf := testutil.Config()
	for _, opt := range confOpts {
		opt(conf)
	}
	logger := testutil.Logger(conf)
	validate, translator := testutil.Validator()
	core.ParseEmailTemplates(conf, logger)
	emailsvc.ResetSentMessages()

	// set up DB & repos
	db := database.NewMemoryDB()
	env := &testEnv{
		conf:     conf,
		metrics:  metricsvc.New(),
		queue:    inmem.NewQueue(10),
		mediaDir: t.TempDir(),
		usrRepo:  database.NewUserRepository(db),
		stdRepo:  database.NewStudentRepository(db),
		attRepo:  database.NewAttendanceRepository(db),
		evtRepo:  database.NewEventRepository(db),
	}

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	media := mediasvc.NewLocalStore(env.mediaDir, conf.Media.BaseURL)
	inviteSvc := invite.NewService(mailSvc, env.queue, inmem.NewReceipts(), invite.Options{
		Sender:     conf.InviteSender(),
		TemplateID: conf.Invite.TemplateID,
		LockTTL:    conf.Invite.LockTTL,
	})
	usrSvc := user.NewService(env.usrRepo, mailSvc, validate)
	stdSvc := student.NewService(env.stdRepo, media, inviteSvc, validate, logger, student.Options{
		MaxVideoSize:        conf.Media.MaxVideoSize,
		RegistrationBaseURL: conf.Invite.RegistrationBaseURL,
	})
	authSvc := auth.NewService(inmem.NewSessions(), conf.Server.JWTExpirationDelta)
	authSvc.Register(auth.RoleAdmin, usrSvc.AdminFinder())
	authSvc.Register(auth.RoleCC, usrSvc.MemberFinder(auth.RoleCC))
	authSvc.Register(auth.RoleTeacher, usrSvc.MemberFinder(auth.RoleTeacher))
	authSvc.Register(auth.RoleStudent, stdSvc.Finder())

	// set up server
	deps := ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Metrics:        env.metrics,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
		HealthChecks:   map[string]HealthCheck{"store": db.Healthy},
		MediaDir:       env.mediaDir,
		AuthSvc:        authSvc,
		UserSvc:        usrSvc,
		StudentSvc:     stdSvc,
		AttendanceSvc:  attendance.NewService(env.attRepo),
		EventSvc:       event.NewService(env.evtRepo, media, validate, conf.Media.MaxDocumentSize),
		InviteSvc:      inviteSvc,
	}
	for _, opt := range depsOpts {
		opt(&deps)
	}
	env.app = NewServer(deps)
	return env
}

func (env *testEnv) login(t *testing.T, role, username, pwd string) (string, auth.Session) {
	body := marchallObj(t, LoginRequest{UserType: role, Username: username, Password: pwd})
	req, rec := newRequest(http.MethodPost, "/v1/auth/login", body)
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	unmarshallObj(t, rec, &resp)
	return resp.Token, resp.Session
}

func (env *testEnv) adminToken(t *testing.T) string {
	testutil.CreateAdmin(t, env.usrRepo, "admin", adminPwd)
	token, _ := env.login(t, auth.RoleAdmin, "admin", adminPwd)
	return token
}

// memberToken creates an active staff member (password already changed) & logs them in.
func (env *testEnv) memberToken(t *testing.T, role, username string) (string, user.Member) {
	mbr := testutil.CreateMember(t, env.usrRepo, role, username, staffPwd, true)
	token, _ := env.login(t, role, username, staffPwd)
	return token, mbr
}

func (env *testEnv) studentToken(t *testing.T, usn, name string) (string, student.Student) {
	std := testutil.CreateStudent(t, env.stdRepo, usn, name, studentPwd)
	token, _ := env.login(t, auth.RoleStudent, usn, studentPwd)
	return token, std
}
