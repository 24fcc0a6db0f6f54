package stack

import (
	"github.com/wirestack/wirestack/resources/lambda"
	"github.com/wirestack/wirestack/resources/sns"
)

// NotificationService is the fan-out component: the /notify endpoint
// publishes to the topic, and the same function consumes the topic's
// deliveries and records them in the notifications table. Its access logs
// are retained on teardown for audit.
type NotificationService struct {
	Function  *Function
	Topic     TopicHandle
	Endpoints *EndpointGroup
}

func (s *Stack) addNotificationService() *NotificationService {
	topic := TopicHandle{s.builder.Add("NotificationTopic", sns.Topic{
		TopicName:   s.resourceName("notifications"),
		DisplayName: "Application notifications",
	})}

	fn := s.addFunction(FunctionSpec{
		Name:        "Notification",
		Description: "Publishes notifications and records topic deliveries",
		Handler:     "notification.handler",
		Layer:       s.Layer,
		Bindings: []Binding{
			BindTable("NOTIFICATION_TABLE_NAME", s.Tables.Notifications, CapabilityRead, CapabilityWrite),
			BindTopic("SNS_TOPIC_ARN", topic, CapabilityPublish, CapabilityConsume),
		},
	})

	s.builder.Add("NotificationSubscription", sns.Subscription{
		TopicArn: topic.Handle,
		Protocol: "lambda",
		Endpoint: fn.Handle.Attr("Arn"),
	})
	s.builder.Add("NotificationTopicPermission", lambda.Permission{
		FunctionName: fn.Handle,
		Action:       "lambda:InvokeFunction",
		Principal:    "sns.amazonaws.com",
		SourceArn:    topic.Handle,
	})

	s.subscriptions = append(s.subscriptions, Subscription{
		Source: topic.LogicalID,
		Target: fn,
		Event:  "sns:Notification",
	})

	endpoints := s.addEndpointGroup(EndpointGroupSpec{
		Name:        "NotificationApi",
		Description: "Notification API",
		Routes: []Route{
			{Method: "POST", Path: "/notify", Fn: fn},
		},
		RetainLogs: true,
	})

	return &NotificationService{Function: fn, Topic: topic, Endpoints: endpoints}
}
