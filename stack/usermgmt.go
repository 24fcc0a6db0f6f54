package stack

// UserManagementAPI is the user CRUD component: one function behind the
// /users endpoint group, reading and writing the users table.
type UserManagementAPI struct {
	Function  *Function
	Endpoints *EndpointGroup
}

func (s *Stack) addUserManagement() *UserManagementAPI {
	fn := s.addFunction(FunctionSpec{
		Name:        "UserManagement",
		Description: "Creates, lists, and fetches users",
		Handler:     "user_management.handler",
		Layer:       s.Layer,
		Bindings: []Binding{
			BindTable("USER_TABLE_NAME", s.Tables.Users, CapabilityRead, CapabilityWrite),
		},
	})

	endpoints := s.addEndpointGroup(EndpointGroupSpec{
		Name:        "UserApi",
		Description: "User management API",
		Routes: []Route{
			{Method: "POST", Path: "/users", Fn: fn},
			{Method: "GET", Path: "/users", Fn: fn},
			{Method: "GET", Path: "/users/{id}", Fn: fn},
		},
	})

	return &UserManagementAPI{Function: fn, Endpoints: endpoints}
}
