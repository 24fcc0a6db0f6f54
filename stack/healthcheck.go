package stack

// HealthCheckAPI is the liveness probe: a minimal function with no layer,
// no bindings, and a tight resource budget behind GET /health.
type HealthCheckAPI struct {
	Function  *Function
	Endpoints *EndpointGroup
}

func (s *Stack) addHealthCheck() *HealthCheckAPI {
	fn := s.addFunction(FunctionSpec{
		Name:        "HealthCheck",
		Description: "Reports service liveness",
		Handler:     "health_check.handler",
		MemorySize:  128,
		Timeout:     10,
	})

	endpoints := s.addEndpointGroup(EndpointGroupSpec{
		Name:        "HealthApi",
		Description: "Health check API",
		Routes: []Route{
			{Method: "GET", Path: "/health", Fn: fn},
		},
	})

	return &HealthCheckAPI{Function: fn, Endpoints: endpoints}
}
