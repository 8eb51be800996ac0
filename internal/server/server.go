package server

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizpath/quizpath/internal/config"
	"github.com/quizpath/quizpath/internal/driver"
	"github.com/quizpath/quizpath/internal/graph"
	"github.com/quizpath/quizpath/internal/llm"
	"github.com/quizpath/quizpath/internal/model"
	"github.com/quizpath/quizpath/internal/quiz"
	"github.com/quizpath/quizpath/internal/session"
	"github.com/quizpath/quizpath/internal/ship"
)

const defaultAvoidWindow = 5

var defaultTopics = []string{"История", "Космос", "Физика", "Искусство"}

// Server sequences the game flow: create session, seed topics, generate and
// store questions, record answers and rewards. All durable state lives in the
// graph store; ship states and the path cache are in-memory only.
type Server struct {
	Store       *graph.Store
	Generator   *quiz.Generator
	Sessions    *session.Cache
	Topics      []string
	AvoidWindow int

	mu    sync.Mutex
	ships map[string]ship.State
	rng   *rand.Rand
}

func New(store *graph.Store, generator *quiz.Generator, cfg config.QuizConfig) *Server {
	topics := cfg.Topics
	if len(topics) == 0 {
		topics = defaultTopics
	}
	window := cfg.AvoidWindow
	if window <= 0 {
		window = defaultAvoidWindow
	}

	return &Server{
		Store:       store,
		Generator:   generator,
		Sessions:    session.NewCache(),
		Topics:      topics,
		AvoidWindow: window,
		ships:       make(map[string]ship.State),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewServer wires the production server from config file and environment.
func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: could not load %s: %v. Using defaults", cfgPath, err)
		cfg = &config.Config{}
	}

	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		cfg.Neo4j.URI = uri
	}
	if user := os.Getenv("NEO4J_USERNAME"); user != "" {
		cfg.Neo4j.User = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		cfg.Neo4j.Password = pass
	}
	if cfg.Neo4j.URI == "" {
		cfg.Neo4j.URI = "bolt://localhost:7687"
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		cfg.LLM.Provider = provider
	}
	if envModel := os.Getenv("LLM_MODEL"); envModel != "" {
		cfg.LLM.Model = envModel
	}
	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "gemini"
		cfg.LLM.Model = "gemini-2.5-flash"
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
	}

	d, err := driver.NewNeo4jDriver(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
	if err != nil {
		log.Fatalf("Failed to connect to Neo4j: %v", err)
	}
	if err := d.BuildIndices(context.Background()); err != nil {
		log.Printf("Warning: failed to build indices: %v", err)
	}

	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	store := graph.NewStore(d)
	generator := quiz.NewGenerator(llmClient, cfg.Prompts)

	return New(store, generator, cfg.Quiz)
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware())

	r.GET("/start", s.StartGame)
	r.POST("/first_question", s.FirstQuestion)
	r.POST("/answer", s.Answer)
	r.GET("/graph/:session_id", s.Graph)
	r.GET("/ship/:session_id", s.ShipStatus)

	return r
}

// Development CORS: the frontend runs on its own origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) StartGame(c *gin.Context) {
	sessionID := s.Sessions.Create("")

	if err := s.Store.SeedTopics(c.Request.Context(), sessionID, s.Topics); err != nil {
		log.Printf("Failed to seed topics: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start game"})
		return
	}

	s.mu.Lock()
	s.ships[sessionID] = ship.NewState()
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"topics":     s.Topics,
	})
}

type FirstQuestionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Topic     string `json:"topic" binding:"required"`
}

func (s *Server) FirstQuestion(c *gin.Context) {
	var req FirstQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	q, err := s.Generator.FirstQuestion(c.Request.Context(), req.Topic)
	if err != nil {
		log.Printf("Generation failed for topic %q: %v", req.Topic, err)
		q = quiz.Fallback(req.Topic)
	}

	if err := s.Store.StoreFirstQuestion(c.Request.Context(), req.SessionID, q.Question, q.Options); err != nil {
		log.Printf("Failed to store first question: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store question"})
		return
	}

	s.Sessions.Append(req.SessionID, req.Topic, "")

	c.JSON(http.StatusOK, questionResponse(req.SessionID, q))
}

type AnswerRequest struct {
	SessionID    string `json:"session_id" binding:"required"`
	QuestionText string `json:"question_text" binding:"required"`
	ChosenAnswer string `json:"chosen_answer" binding:"required"`
}

func (s *Server) Answer(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	ctx := c.Request.Context()

	correct, err := s.Store.IsCorrectOption(ctx, req.QuestionText, req.ChosenAnswer)
	if err != nil {
		if !errors.Is(err, graph.ErrNotFound) {
			log.Printf("Failed to check answer: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check answer"})
			return
		}
		// Fallback questions carry no correct option; count as a miss.
		log.Printf("Option %q of question %q not found, treating as incorrect", req.ChosenAnswer, req.QuestionText)
	}

	avoid := s.Sessions.LastAnswers(req.SessionID, s.AvoidWindow)
	q, err := s.Generator.NextQuestion(ctx, req.ChosenAnswer, avoid)
	if err != nil {
		log.Printf("Generation failed after answer %q: %v", req.ChosenAnswer, err)
		q = quiz.Fallback(req.ChosenAnswer)
	}

	if err := s.Store.StoreSelectedAnswer(ctx, req.QuestionText, req.ChosenAnswer, q.Question, q.Options); err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Question or answer not found"})
			return
		}
		log.Printf("Failed to store selected answer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store answer"})
		return
	}

	s.Sessions.Append(req.SessionID, s.currentTopic(req.SessionID), req.ChosenAnswer)

	s.mu.Lock()
	state, ok := s.ships[req.SessionID]
	if !ok {
		state = ship.NewState()
	}
	state, event := ship.Apply(state, correct, s.rng)
	s.ships[req.SessionID] = state
	s.mu.Unlock()

	resp := questionResponse(req.SessionID, q)
	resp["correct"] = correct
	resp["event"] = event
	resp["ship"] = state
	c.JSON(http.StatusOK, resp)
}

func (s *Server) Graph(c *gin.Context) {
	g, err := s.Store.GetGraph(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		log.Printf("Failed to build graph: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build graph"})
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) ShipStatus(c *gin.Context) {
	s.mu.Lock()
	state, ok := s.ships[c.Param("session_id")]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown session"})
		return
	}
	c.JSON(http.StatusOK, state)
}

// currentTopic derives the topic the answered question was about: the chosen
// answer of the previous step, or the seed topic right after the first
// question.
func (s *Server) currentTopic(sessionID string) string {
	path, ok := s.Sessions.Get(sessionID)
	if !ok || len(path) == 0 {
		return ""
	}
	last := path[len(path)-1]
	if last.ChosenAnswer != "" {
		return last.ChosenAnswer
	}
	return last.Topic
}

func questionResponse(sessionID string, q model.Question) gin.H {
	return gin.H{
		"session_id": sessionID,
		"question":   q.Question,
		"options":    q.Options,
	}
}
