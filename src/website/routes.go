package website

import (
	"net/http"
	"regexp"
	"time"

	"git.nextdev.network/nextdev/nextdev/src/auth"
	"git.nextdev.network/nextdev/nextdev/src/config"
	"git.nextdev.network/nextdev/nextdev/src/perf"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewWebsiteRoutes(conn *pgxpool.Pool, perfCollector *perf.PerfCollector) http.Handler {
	router := &Router{}
	sessions := auth.NewTokenService(config.Config.Auth)

	attachData := func(h Handler) Handler {
		return func(c *RequestContext) ResponseData {
			c.Conn = conn
			c.Sessions = sessions
			return h(c)
		}
	}

	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			attachData,
			panicCatcherMiddleware,
			trackRequestPerf(perfCollector),
			logContextErrorsMiddleware,
			corsMiddleware,
			loadCommonData,
		},
	}

	routes.GET(regexp.MustCompile(`^/$`), Index)

	// Auth
	routes.POST(regexp.MustCompile(`^/auth/register$`), Register)
	routes.POST(regexp.MustCompile(`^/auth/login$`), func(c *RequestContext) ResponseData {
		return securityTimerMiddleware(time.Second, Login)(c)
	})
	routes.POST(regexp.MustCompile(`^/auth/logout$`), Logout)
	routes.GET(regexp.MustCompile(`^/auth/me$`), needsAuth(Me))

	// Users
	routes.GET(regexp.MustCompile(`^/users$`), UserList)
	routes.GET(regexp.MustCompile(`^/users/search$`), UserSearch)
	routes.GET(regexp.MustCompile(`^/users/(?P<id>\d+)$`), UserProfile)
	routes.GET(regexp.MustCompile(`^/users/(?P<id>\d+)/posts$`), UserPosts)
	routes.PUT(regexp.MustCompile(`^/users/(?P<id>\d+)/promote$`), needsAuth(PromoteUser))
	routes.PUT(regexp.MustCompile(`^/users/(?P<id>\d+)/demote$`), needsAuth(DemoteUser))
	routes.PUT(regexp.MustCompile(`^/users/(?P<id>\d+)/ban$`), needsAuth(BanUser))
	routes.PUT(regexp.MustCompile(`^/users/(?P<id>\d+)/unban$`), needsAuth(UnbanUser))
	routes.POST(regexp.MustCompile(`^/users/(?P<id>\d+)/profile-photo$`), needsAuth(UploadProfilePhoto))
	routes.DELETE(regexp.MustCompile(`^/users/(?P<id>\d+)/profile-photo$`), needsAuth(DeleteProfilePhoto))

	// Posts. The fixed paths must be registered before the (?P<id>\d+)
	// routes or they would never match.
	routes.GET(regexp.MustCompile(`^/posts$`), PostList)
	routes.POST(regexp.MustCompile(`^/posts$`), needsAuth(CreatePost))
	routes.GET(regexp.MustCompile(`^/posts/search$`), PostSearch)
	routes.GET(regexp.MustCompile(`^/posts/stats/top-posters$`), TopPosters)
	routes.GET(regexp.MustCompile(`^/posts/stats/top-posts$`), TopPosts)
	routes.GET(regexp.MustCompile(`^/posts/(?P<id>\d+)$`), PostDetail)
	routes.DELETE(regexp.MustCompile(`^/posts/(?P<id>\d+)$`), needsAuth(DeletePost))
	routes.GET(regexp.MustCompile(`^/posts/(?P<id>\d+)/comments$`), PostComments)
	routes.POST(regexp.MustCompile(`^/posts/(?P<id>\d+)/comments$`), needsAuth(CreateComment))
	routes.DELETE(regexp.MustCompile(`^/comments/(?P<id>\d+)$`), needsAuth(DeleteComment))
	routes.POST(regexp.MustCompile(`^/posts/(?P<id>\d+)/rate$`), needsAuth(RatePost))
	routes.DELETE(regexp.MustCompile(`^/posts/(?P<id>\d+)/rate$`), needsAuth(UnratePost))
	routes.GET(regexp.MustCompile(`^/posts/(?P<id>\d+)/rating$`), PostRating)
	routes.GET(regexp.MustCompile(`^/posts/(?P<id>\d+)/user-rating$`), UserPostRating)
	routes.POST(regexp.MustCompile(`^/posts/(?P<id>\d+)/view$`), IncrementPostView)

	// Tags
	routes.GET(regexp.MustCompile(`^/tags$`), TagList)
	routes.POST(regexp.MustCompile(`^/tags$`), needsAuth(CreateTag))
	routes.GET(regexp.MustCompile(`^/tags/(?P<id>\d+)/posts$`), PostsByTag)

	// Messages
	routes.POST(regexp.MustCompile(`^/messages/(?P<id>\d+)$`), needsAuth(SendMessage))
	routes.GET(regexp.MustCompile(`^/messages/(?P<id>\d+)$`), needsAuth(Conversation))
	routes.GET(regexp.MustCompile(`^/conversations$`), needsAuth(ConversationList))

	routes.AnyMethod(regexp.MustCompile(`^/`), FourOhFour)

	return router
}

func Index(c *RequestContext) ResponseData {
	var res ResponseData
	res.WriteJson(map[string]string{"message": "NextDev backend"}, c.Perf)
	return res
}
