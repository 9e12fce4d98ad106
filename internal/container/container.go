package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/davmoreno/djlink/internal/models"
	"github.com/davmoreno/djlink/internal/notify"
	"github.com/davmoreno/djlink/internal/realtime"
	"github.com/davmoreno/djlink/internal/services"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	// Database and broker clients
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client
	RedisClient    *redis.Client

	Bridge     *realtime.Publisher
	Subscriber *realtime.Subscriber
	Notifier   *notify.Notifier

	UserService     *services.UserService
	ProfileService  *services.ProfileService
	MessageService  *services.MessageService
	EventService    *services.EventService
	ProposalService *services.ProposalService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cloudinary *cloudinary.Cloudinary,
	supabaseClient *supabase.Client,
	mongoDBClient *mongo.Client,
	redisClient *redis.Client,
	rabbitConn *amqp.Connection,
	emailQueueName string,
	supaUrl, supaKey string,
) (*Container, error) {
	// Initialize repositories
	supa := models.SupabaseNewRepo(supabaseClient, supaUrl, supaKey)
	mongoRepo := models.MongodbNewRepo(mongoDBClient)

	bridge := realtime.NewPublisher(redisClient, logger)
	subscriber := realtime.NewSubscriber(redisClient, logger)

	notifier, err := notify.NewNotifier(rabbitConn, emailQueueName, logger)
	if err != nil {
		return nil, err
	}

	userService := services.NewUserService(supa)
	profileService := services.NewProfileService(supa)
	messageService := services.NewMessageService(supa, bridge, logger)
	eventService := services.NewEventService(supa, logger)
	proposalService := services.NewProposalService(supa, mongoRepo, eventService, messageService, bridge, notifier, logger)

	return &Container{
		Logger:          logger,
		Cloudinary:      cloudinary,
		SupabaseClient:  supabaseClient,
		MongoDBClient:   mongoDBClient,
		RedisClient:     redisClient,
		Bridge:          bridge,
		Subscriber:      subscriber,
		Notifier:        notifier,
		UserService:     userService,
		ProfileService:  profileService,
		MessageService:  messageService,
		EventService:    eventService,
		ProposalService: proposalService,
	}, nil
}
